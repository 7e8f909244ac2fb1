package messages

// User facing replies sent back through the interaction.
const (
	ErrUserErrorProcessing = "An internal error occurred while processing your request. Please report this to the server administrators."

	ErrPanelNotFound = "This ticket panel no longer exists."

	ErrPanelNotConfigured = "The ticket panel for this channel is not configured."

	ErrTicketOpenFailed = "Could not open the ticket. Make sure the bot has the Manage Channels permission and the selected category is valid."

	ErrNoTicketPermission = "You do not have permission to manage this ticket."

	ErrClaimStaffOnly = "Only staff members can claim tickets."

	ErrAlreadyClaimed = "This ticket has already been claimed."

	ErrReminderFailed = "Could not send a direct message to the user."

	ErrAdministratorOnly = "You must be an administrator to use this command."

	TicketOpened = "Ticket opened: <#%s>"

	TicketClosedBy = "Ticket closed by <@%s>."

	TicketClosingSoon = "The ticket will be closed in 3 seconds."

	TicketClaimedBy = "Ticket claimed by <@%s>."

	TicketReminder = "Staff are requesting your presence in the ticket: %s\n%s"

	ReminderSent = "A reminder has been sent to the user."

	DefaultTicketMessage = "Please describe your issue and the team will help you shortly."

	PanelPublished = "The ticket panel has been published in <#%s>."

	NoClaimsYet = "No tickets have been claimed yet."
)
