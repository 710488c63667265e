package models

// TelegramConfig stores the bot credentials and basic settings
type TelegramConfig struct {
	IsEnabled bool   `json:"is_enabled"`
	BotToken  string `json:"bot_token"`
	ChatID    string `json:"chat_id"`
}

// NewTelegramConfig enables the bot only when both credentials are present.
func NewTelegramConfig(botToken, chatID string) *TelegramConfig {
	return &TelegramConfig{
		IsEnabled: botToken != "" && chatID != "",
		BotToken:  botToken,
		ChatID:    chatID,
	}
}
