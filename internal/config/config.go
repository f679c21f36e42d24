package config

import (
	"sync"

	"github.com/shopspring/decimal"
	viper "github.com/spf13/viper"
)

var config_singleton *Config
var muonce sync.Once

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	DbName        string `mapstructure:"POSTGRES_DB"`
	DbHost        string `mapstructure:"POSTGRES_HOST"`
	DbPort        string `mapstructure:"POSTGRES_PORT"`
	DbUser        string `mapstructure:"POSTGRES_USER"`
	DbPas         string `mapstructure:"POSTGRES_PASSWORD"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	KafkaBrokers  string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic    string `mapstructure:"KAFKA_ORDER_TOPIC"`

	// 結帳時是否做庫存預留扣減，需要先建好 inventory 資料
	InventoryReservation bool `mapstructure:"INVENTORY_RESERVATION"`

	// 定價規則，來源是訂單總額計算程序的預設參數
	TaxRate               string `mapstructure:"TAX_RATE"`
	FreeShippingThreshold string `mapstructure:"FREE_SHIPPING_THRESHOLD"`
	FlatShippingCost      string `mapstructure:"FLAT_SHIPPING_COST"`
}

func GetConfig() *Config {
	muonce.Do(func() {
		cf, err := loadConfig()
		if err != nil {
			panic("failed to load config: " + err.Error())
		}
		config_singleton = cf
	})
	return config_singleton
}

/*
單純回傳錯誤 由外部決定要不要Fatal, 畢竟有可能有替代方案
*/
func loadConfig() (cf *Config, err error) {
	cf = &Config{}

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("POSTGRES_DB", "lab_elshop")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("POSTGRES_USER", "royce")
	viper.SetDefault("POSTGRES_PASSWORD", "password")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_ORDER_TOPIC", "elshop.order.events")
	viper.SetDefault("INVENTORY_RESERVATION", false)
	viper.SetDefault("TAX_RATE", "0.20")
	viper.SetDefault("FREE_SHIPPING_THRESHOLD", "500")
	viper.SetDefault("FLAT_SHIPPING_COST", "9.99")

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// .env 不存在時只吃環境變數與預設值
	_ = viper.ReadInConfig()

	err = viper.Unmarshal(cf)
	if err != nil {
		return nil, err
	}
	return cf, nil
}

// PricingConfig 把設定字串轉成 decimal，解析失敗直接回錯誤不猜值
func (c *Config) PricingConfig() (taxRate, threshold, flatCost decimal.Decimal, err error) {
	taxRate, err = decimal.NewFromString(c.TaxRate)
	if err != nil {
		return
	}
	threshold, err = decimal.NewFromString(c.FreeShippingThreshold)
	if err != nil {
		return
	}
	flatCost, err = decimal.NewFromString(c.FlatShippingCost)
	return
}
