package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// UI texts in English
const (
	startText = "👋 I watch appointment pages and ping you when a slot opens.\n\n" +
		"Paste a doctor's profile link to start monitoring them, or use /doctors to browse what is already tracked."
	doctorsTitle  = "🩺 Monitored doctors:"
	noDoctorsText = "Nothing is monitored yet. Paste a profile link to add a doctor."
	noSubsText    = "You have no active subscriptions. Use /doctors to pick one."
	mySubsTitle   = "🔔 Your subscriptions:"

	onboardOKFmt = "✅ Now monitoring %s.\nYou are subscribed; I will ping you when a slot opens."
	onboardNFFmt = "⚠️ I saved %s, but could not extract working booking identifiers from the page.\n" +
		"The doctor is stored inactive and will not be polled until an operator fixes the identifiers."

	extractNetworkText  = "Could not reach the profile page. Please try again in a minute."
	extractNotFoundText = "That profile page does not exist (404). Check the link."
	extractBadPageText  = "I fetched the page but did not recognize its shape. The link may not be a doctor profile."
	extractBadURLFmt    = "That does not look like a valid profile link: %s"
)

// mainMenuKeyboard is the persistent reply keyboard.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/doctors"),
			tgbotapi.NewKeyboardButton("/mysubs"),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}
