package bot

// Bot commands.
const (
	CommandStart     = "/start"
	CommandAdmin     = "/admin"
	CommandBan       = "/ban"
	CommandUnban     = "/unban"
	CommandStats     = "/stats"
	CommandBroadcast = "/broadcast"
)
