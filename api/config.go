package api

type ServerConfig struct {
	DB    DBConfig
	Media MediaConfig
	HTTP  HTTPConfig
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string
}

// MediaConfig 控制上傳圖片的存放位置
// 設定了 S3 Endpoint 時使用 S3，否則使用本機目錄
type MediaConfig struct {
	Dir            string
	PublicBasePath string

	S3 S3Config
}

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Bucket          string
	PublicBaseURL   string
}

type HTTPConfig struct {
	CORSOrigins []string
}
