package templates

import (
	"fmt"
	"strings"
)

// ItemReview holds the inputs for a generated item review.
type ItemReview struct {
	ItemName        string
	ItemType        string
	Style           string
	ColorScheme     string
	SpecialFeatures string
	Rating          int
	CreatorName     string
}

var occasionsByStyle = map[string][3]string{
	"casual":     {"everyday wear", "coffee dates", "shopping trips"},
	"formal":     {"business meetings", "formal events", "special occasions"},
	"party":      {"night out", "celebrations", "club events"},
	"gothic":     {"dark themed events", "alternative gatherings", "mystical occasions"},
	"cute":       {"dates", "cute meetups", "playful events"},
	"elegant":    {"formal dinners", "special occasions", "sophisticated events"},
	"streetwear": {"urban adventures", "casual hangouts", "street fashion events"},
	"vintage":    {"retro themed events", "vintage parties", "classic occasions"},
}

// Occasions returns three suggested occasions for a style.
func Occasions(style string) [3]string {
	if o, ok := occasionsByStyle[style]; ok {
		return o
	}
	return [3]string{"various occasions", "different events", "multiple settings"}
}

// Stars renders a rating as repeated star emoji.
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	return strings.Repeat("⭐", rating)
}

// Detailed renders the multi-paragraph review.
func (r ItemReview) Detailed() string {
	occ := Occasions(r.Style)
	var b strings.Builder

	fmt.Fprintf(&b, "This absolutely stunning %s by %s is a true masterpiece! The %s color scheme creates the perfect %s aesthetic that's both elegant and versatile.\n\n",
		r.ItemType, r.CreatorName, r.ColorScheme, r.Style)
	b.WriteString("The quality and attention to detail are exceptional. ")
	if r.SpecialFeatures != "" {
		fmt.Fprintf(&b, "I especially love the %s which add such a beautiful and unique touch to the overall design. ", r.SpecialFeatures)
	}
	b.WriteString("The textures are incredibly realistic and the fit is absolutely perfect.\n\n")
	fmt.Fprintf(&b, "This piece is incredibly versatile and can be styled for so many different occasions - it's perfect for %s, %s, and even %s. ",
		occ[0], occ[1], occ[2])
	fmt.Fprintf(&b, "The %s truly showcases %s's incredible talent and creativity in virtual fashion design.\n\n", r.ItemType, r.CreatorName)
	fmt.Fprintf(&b, "Overall, this is a must-have piece that I would definitely recommend to anyone looking for high-quality %s fashion. ", r.Style)
	b.WriteString("Thank you for creating such a beautiful and well-crafted item! " + Stars(r.Rating))
	return b.String()
}

// ReviewTemplate is a fill-in-the-blanks review for one item type.
type ReviewTemplate struct {
	Title string
	Body  string
}

var reviewTemplates = map[string]ReviewTemplate{
	"outfit": {
		Title: "Outfit Review Template",
		Body: `This [item_type] by [creator_name] is absolutely stunning! The [color_scheme] color scheme creates a perfect [style] look that's both elegant and versatile.

The quality and attention to detail are exceptional. The [special_features] add such a beautiful touch to the overall design. The fit is perfect and the textures are incredibly realistic.

I love how this piece can be styled in so many different ways - it's perfect for [occasion1], [occasion2], and [occasion3]. The [item_type] truly showcases [creator_name]'s incredible talent and creativity.

Overall, this is a must-have piece that I would definitely recommend to anyone looking for high-quality [style] fashion. Thank you for creating such a beautiful item! ⭐⭐⭐⭐⭐`,
	},
	"dress": {
		Title: "Dress Review Template",
		Body: `This gorgeous [item_type] by [creator_name] is absolutely breathtaking! The [color_scheme] design is perfect for any [style] occasion.

The silhouette is incredibly flattering and the attention to detail is remarkable. I especially love the [special_features] which add such elegance to the overall look.

The quality is outstanding - the textures are realistic and the fit is perfect. This dress would be perfect for [occasion1], [occasion2], or even [occasion3].

[creator_name] has truly outdone themselves with this creation. It's a timeless piece that I know I'll be wearing for years to come. Highly recommended! ⭐⭐⭐⭐⭐`,
	},
	"accessories": {
		Title: "Accessories Review Template",
		Body: `These beautiful [item_type] by [creator_name] are absolutely perfect! The [color_scheme] design adds such elegance to any outfit.

The quality is exceptional - every detail has been carefully crafted. I love how the [special_features] make these accessories truly unique and special.

These pieces are incredibly versatile and can be styled with so many different looks. They're perfect for [occasion1], [occasion2], and [occasion3].

[creator_name] has created something truly special here. These accessories are a must-have for anyone who loves [style] fashion. Thank you for such beautiful work! ⭐⭐⭐⭐⭐`,
	},
	"hair": {
		Title: "Hair Review Template",
		Body: `This stunning [item_type] by [creator_name] is absolutely gorgeous! The [color_scheme] color and style are perfect for creating beautiful looks.

The quality is outstanding - the textures are realistic and the styling options are incredible. I especially love the [special_features] which add such character to the hair.

This hair works perfectly with so many different styles and outfits. It's ideal for [occasion1], [occasion2], and [occasion3].

[creator_name] has created a truly beautiful piece that I know I'll be using constantly. The attention to detail and quality make this hair a definite favorite. Highly recommended! ⭐⭐⭐⭐⭐`,
	},
}

// TemplateFor returns the review template for an item type, falling back
// to the outfit template.
func TemplateFor(itemType string) ReviewTemplate {
	if t, ok := reviewTemplates[itemType]; ok {
		return t
	}
	return reviewTemplates["outfit"]
}

// TemplateVariables documents the bracketed fields used by review templates.
const TemplateVariables = "• [item_type] - Type of item\n• [creator_name] - Creator's name\n• [color_scheme] - Color description\n• [style] - Style type\n• [special_features] - Special details\n• [occasion1/2/3] - Use occasions"
