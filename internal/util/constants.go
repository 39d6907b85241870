package util

// TimeFormat 反馈表 Timestamp 列
const TimeFormat = "2006-01-02 15:04:05"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeCSV = "text/csv"
)

// ContextSessionID 会话ID在 gin.Context 中的键
const ContextSessionID = "session_id"
