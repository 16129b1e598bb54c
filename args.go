package main

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"autohaus/api"
)

func ParseArgs() Args {
	// server config
	pflag.String("server-url", "0.0.0.0:3000", "")
	pflag.StringSlice("cors-origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"}, "")

	// media config
	pflag.String("media-dir", "uploads/vehicles", "")
	pflag.String("media-public-base-path", "/uploads/vehicles", "")

	// s3 config (optional, local disk is used when the endpoint is empty)
	pflag.String("s3-endpoint", "", "")
	pflag.String("s3-bucket", "", "")
	pflag.String("s3-public-base-url", "", "")
	pflag.String("s3-access-key-id", "", "")
	pflag.String("s3-secret-access-key", "", "")

	// db config
	pflag.String("db-user", "", "")
	pflag.String("db-password", "", "")
	pflag.String("db-host", "", "")
	pflag.Int("db-port", 5432, "")
	pflag.String("db-database", "", "")
	pflag.String("db-schema", "", "")

	// bind pflag to viper
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("AUTOHAUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// initial arguments
	return Args{
		ServerURL: viper.GetString("server-url"),
		ServerConfig: api.ServerConfig{
			DB: api.DBConfig{
				User:     viper.GetString("db-user"),
				Password: viper.GetString("db-password"),
				Host:     viper.GetString("db-host"),
				Port:     viper.GetInt("db-port"),
				Database: viper.GetString("db-database"),
				Schema:   viper.GetString("db-schema"),
			},
			Media: api.MediaConfig{
				Dir:            viper.GetString("media-dir"),
				PublicBasePath: viper.GetString("media-public-base-path"),
				S3: api.S3Config{
					Endpoint:        viper.GetString("s3-endpoint"),
					Bucket:          viper.GetString("s3-bucket"),
					PublicBaseURL:   viper.GetString("s3-public-base-url"),
					AccessKeyID:     viper.GetString("s3-access-key-id"),
					SecretAccessKey: viper.GetString("s3-secret-access-key"),
				},
			},
			HTTP: api.HTTPConfig{
				CORSOrigins: viper.GetStringSlice("cors-origins"),
			},
		},
	}
}

type Args struct {
	ServerURL    string
	ServerConfig api.ServerConfig
}

func (args Args) Validate() bool {
	return args.ServerURL != "" && args.ServerConfig.DB.Host != "" && args.ServerConfig.DB.User != "" && args.ServerConfig.DB.Database != ""
}
