package model

type StudyMaterial struct {
	BaseModel
	Title       string              `gorm:"size:200;not null" json:"title"`
	Course      string              `gorm:"size:50;index" json:"course"`
	Description string              `gorm:"type:text" json:"description"`
	Items       []StudyMaterialItem `gorm:"foreignKey:StudyMaterialID" json:"items,omitempty"`
}

func (StudyMaterial) TableName() string {
	return "study_materials"
}

type StudyMaterialItem struct {
	BaseModel
	StudyMaterialID uint   `gorm:"index;not null" json:"studyMaterialId"`
	Title           string `gorm:"size:200;not null" json:"title"`
	Body            string `gorm:"type:text" json:"body"`
	FileKey         string `gorm:"size:255" json:"-"`
	Position        int    `gorm:"default:0" json:"position"`
}

func (StudyMaterialItem) TableName() string {
	return "study_material_items"
}

// Author is a display profile shown next to study materials.
type Author struct {
	BaseModel
	Name      string `gorm:"size:100;not null" json:"name"`
	Education string `gorm:"size:200" json:"education"`
	ImageKey  string `gorm:"size:255" json:"-"`
}

func (Author) TableName() string {
	return "authors"
}
