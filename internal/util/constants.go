package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeImage = "image/"
	MimePDF   = "application/pdf"
	MimeText  = "text/plain"
)

var AllowedItemFileTypes = []string{MimeImage, MimePDF, MimeText}
