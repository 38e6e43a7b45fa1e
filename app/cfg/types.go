package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	SourcesDir        string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Webhook authentication
	MailgunSigningKey string
	WebhookWindow     int

	// Replay cache
	RedisAddr string

	// Telegram publishing
	TelegramToken     string
	TelegramErrorChat string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
