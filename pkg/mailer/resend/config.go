package resend

// Config carries the Resend credentials and default sender identity.
// The env tags let applications embed it in a cleanenv-parsed config struct.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"RESEND_FROM_EMAIL"`
	SenderName  string `env:"RESEND_FROM_NAME"`
}
