package domain

import "github.com/aretw0/datadesk/pkg/navigation"

// CommandType discriminates outbound commands.
type CommandType string

// Standard Command Types
const (
	// CommandRenderMenu asks the transport to show a menu.
	// Payload: RenderMenu
	CommandRenderMenu CommandType = "RENDER_MENU"

	// CommandSendText asks the transport to send a plain message.
	// Payload: PlainText
	CommandSendText CommandType = "SEND_TEXT"

	// CommandSendFile asks the transport to deliver a file.
	// Payload: FileAttachment
	CommandSendFile CommandType = "SEND_FILE"
)

// Command is a presentation side-effect the controller requests from the host.
type Command struct {
	Type    CommandType `json:"type"`
	UserID  string      `json:"user_id"`
	Payload any         `json:"payload"`
}

// RenderMode tells the transport whether to post a new message or to replace
// the menu the user interacted with.
type RenderMode string

const (
	RenderNew  RenderMode = "new"
	RenderEdit RenderMode = "edit"
)

// RenderMenu is the payload of CommandRenderMenu.
type RenderMenu struct {
	Frame navigation.Frame `json:"frame"`
	Mode  RenderMode       `json:"mode"`
}

// PlainText is the payload of CommandSendText. Suggestions are quick replies
// a transport may offer as a keyboard.
type PlainText struct {
	Text        string   `json:"text"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// FileAttachment is the payload of CommandSendFile.
type FileAttachment struct {
	Name    string `json:"name"`
	Format  string `json:"format"`
	Caption string `json:"caption,omitempty"`
	Data    []byte `json:"data"`
}

// NewMenu builds a render command.
func NewMenu(userID string, frame navigation.Frame, mode RenderMode) Command {
	return Command{Type: CommandRenderMenu, UserID: userID, Payload: RenderMenu{Frame: frame, Mode: mode}}
}

// NewText builds a text command.
func NewText(userID, text string, suggestions ...string) Command {
	return Command{Type: CommandSendText, UserID: userID, Payload: PlainText{Text: text, Suggestions: suggestions}}
}

// NewFile builds a file command.
func NewFile(userID string, file FileAttachment) Command {
	return Command{Type: CommandSendFile, UserID: userID, Payload: file}
}
