package templates

import (
	"strings"
)

// IMVUCaption holds the inputs for an IMVU product caption.
type IMVUCaption struct {
	ItemName       string
	CreatorName    string
	ItemID         string
	ManufacturerID string
	ShopLink       string
	ExtraTags      string
}

// FromTemplate renders the caption from an agency's IMVU format.
func (c IMVUCaption) FromTemplate(format string) string {
	caption := Render(format,
		Field{"item_name", c.ItemName},
		Field{"creator_name", c.CreatorName},
		Field{"item_id", c.ItemID},
		Field{"manufacturer_id", c.ManufacturerID},
	)
	if c.ShopLink != "" && strings.Contains(caption, "{shop_link}") {
		caption = Render(caption, Field{"shop_link", c.ShopLink})
	}
	if c.ExtraTags != "" {
		caption += "\n\n" + c.ExtraTags
	}
	return caption
}

// Default renders the built-in IMVU caption.
func (c IMVUCaption) Default() string {
	var b strings.Builder
	b.WriteString("✨ " + c.ItemName + " ✨\n\n")
	b.WriteString("Creator: " + c.CreatorName + "\n")
	b.WriteString("Item ID: " + c.ItemID + "\n")
	b.WriteString("Manufacturer ID: " + c.ManufacturerID + "\n")
	if c.ShopLink != "" {
		b.WriteString("Shop: " + c.ShopLink + "\n")
	}
	b.WriteString("\n#IMVU #Fashion #Modeling #" + stripSpace(c.CreatorName))
	if c.ExtraTags != "" {
		b.WriteString("\n" + c.ExtraTags)
	}
	return b.String()
}

// InstagramCaption holds the inputs for an Instagram post caption.
type InstagramCaption struct {
	ItemName         string
	CreatorName      string
	CreatorInstagram string
	AgencyInstagram  string
	ItemID           string
	ExtraTags        string
}

// FromTemplate renders the caption from an agency's Instagram format and
// appends the agency's required tags.
func (c InstagramCaption) FromTemplate(format string, requiredTags []string) string {
	caption := Render(format,
		Field{"item_name", c.ItemName},
		Field{"creator_name", c.CreatorName},
		Field{"creator_instagram", c.CreatorInstagram},
		Field{"agency_instagram", c.AgencyInstagram},
		Field{"item_id", c.ItemID},
	)
	if len(requiredTags) > 0 {
		caption += "\n\n" + strings.Join(requiredTags, " ")
	}
	if c.ExtraTags != "" {
		caption += "\n" + c.ExtraTags
	}
	return caption
}

// Default renders the built-in Instagram caption.
func (c InstagramCaption) Default() string {
	var b strings.Builder
	b.WriteString("✨ " + c.ItemName + " ✨\n\n")
	b.WriteString("Loving this beautiful piece by @" + c.CreatorInstagram + "!\n\n")
	b.WriteString("Item ID: " + c.ItemID + "\n\n")
	b.WriteString("#IMVU #Fashion #Modeling #VirtualFashion #" + c.CreatorInstagram + " #" + c.AgencyInstagram)
	if c.ExtraTags != "" {
		b.WriteString("\n" + c.ExtraTags)
	}
	return b.String()
}
