package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	AWSRegion      string `envconfig:"AWS_REGION" default:"sa-east-1"`
	LocalMode      bool   `envconfig:"LOCAL_MODE" default:"true"` // run without AWS
	DynamoEndpoint string `envconfig:"DYNAMO_ENDPOINT" default:"http://localhost:8000"`

	ProductTableName  string `envconfig:"PRODUCT_TABLE_NAME" default:"products"`
	SalesTableName    string `envconfig:"SALES_TABLE_NAME" default:"sales"`
	SettingsTableName string `envconfig:"SETTINGS_TABLE_NAME" default:"settings"`

	// Events are disabled when no brokers are configured.
	KafkaBrokers        []string `envconfig:"KAFKA_BROKERS"`
	SaleEventsTopic     string   `envconfig:"SALE_EVENTS_TOPIC" default:"sale-events"`
	SettingsEventsTopic string   `envconfig:"SETTINGS_EVENTS_TOPIC" default:"settings-events"`
	ConsumerGroup       string   `envconfig:"CONSUMER_GROUP" default:"storefront-service"`

	AssetBucket   string `envconfig:"ASSET_BUCKET" default:"product-images"`
	AssetBaseURL  string `envconfig:"ASSET_BASE_URL"`
	AssetEndpoint string `envconfig:"ASSET_ENDPOINT"`

	AdminEmail        string        `envconfig:"ADMIN_EMAIL"`
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH"` // bcrypt
	JWTSecret         string        `envconfig:"JWT_SECRET"`
	JWTTTL            time.Duration `envconfig:"JWT_TTL" default:"24h"`

	TLSEnabled      bool   `envconfig:"TLS_ENABLED" default:"false"`
	SpireSocketPath string `envconfig:"SPIRE_SOCKET_PATH" default:"unix:///run/spire/sockets/agent.sock"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
