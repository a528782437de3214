package mailer

// Config holds mailer configuration.
// Embed this in your app config for env parsing with ilyakaznacheev/cleanenv.
type Config struct {
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" env-default:"Notification"`
	DefaultLayout   string `env:"MAILER_DEFAULT_LAYOUT" env-default:"base.html"`
}
