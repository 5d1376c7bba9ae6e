package templates

// StreamRequest holds the inputs for a message asking a creator to stream an item.
type StreamRequest struct {
	ItemName        string
	CreatorName     string
	IMVULink        string
	InstagramHandle string
}

// FromTemplate renders the request from an agency's request format.
func (r StreamRequest) FromTemplate(format string) string {
	return Render(format,
		Field{"item_name", r.ItemName},
		Field{"creator_name", r.CreatorName},
		Field{"imvu_link", r.IMVULink},
		Field{"instagram_handle", r.InstagramHandle},
	)
}

// Default renders the built-in request message.
func (r StreamRequest) Default() string {
	return "Hi! I would love to request " + r.ItemName + " by " + r.CreatorName + " for streaming!\n\n" +
		"IMVU Link: " + r.IMVULink + "\n" +
		"Instagram: @" + r.InstagramHandle + "\n\n" +
		"Thank you for considering my request! 💕"
}

// RequestPlaceholder is shown when an agency has no request format.
var RequestPlaceholder = StreamRequest{
	ItemName:        "[Item Name]",
	CreatorName:     "[Creator Name]",
	IMVULink:        "[Your IMVU Link]",
	InstagramHandle: "[Your Instagram Handle]",
}

// RequestTips lists the advice attached to every generated request.
const RequestTips = "• Copy and paste this format into the agency's request channel\n• Make sure to follow the agency's specific rules\n• Be patient - creators review requests carefully"
