package core

// Settings is the runtime configuration shared by the bot and its notifiers.
type Settings struct {
	Pairs    []string
	Telegram TelegramSettings
}

type TelegramSettings struct {
	Enabled bool
	Token   string
	Users   []int
}
