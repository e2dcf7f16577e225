package config

type App struct {
	Port            string `env:"APP_PORT" default:"8080"`
	DatabaseURL     string `env:"DATABASE_URL,required"`
	JWTSecret       string `env:"JWT_SECRET" default:"local_dev_secret"`
	StripeSecretKey string `env:"STRIPE_SECRET_KEY,required"`
	PushGatewayURL  string `env:"PUSH_GATEWAY_URL" default:"https://exp.host/--/api/v2/push/send"`
	Env             string `env:"APP_ENV" default:"dev"`
}
