package templates

import (
	"strings"
	"testing"
)

func TestRenderReplacesFirstOccurrenceOnly(t *testing.T) {
	got := Render("Hi {name}, {name}!", Field{"name", "A"})
	if got != "Hi A, {name}!" {
		t.Errorf("Render = %q, want %q", got, "Hi A, {name}!")
	}
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	got := Render("{item_name} at {unknown}", Field{"item_name", "Gown"})
	if got != "Gown at {unknown}" {
		t.Errorf("Render = %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" Gown , ,Heels,  ")
	if strings.Join(got, "|") != "Gown|Heels" {
		t.Errorf("SplitList = %v", got)
	}
	if got := SplitList(""); got == nil || len(got) != 0 {
		t.Errorf("SplitList(\"\") = %#v, want empty non-nil", got)
	}
}

func TestIMVUCaptionFromTemplate(t *testing.T) {
	c := IMVUCaption{
		ItemName: "Silk Gown", CreatorName: "Mira", ItemID: "123", ManufacturerID: "456",
		ShopLink: "https://shop/mira",
	}

	noShop := c.FromTemplate("{item_name} by {creator_name} ({item_id}/{manufacturer_id})")
	if noShop != "Silk Gown by Mira (123/456)" {
		t.Errorf("FromTemplate = %q", noShop)
	}
	if strings.Contains(noShop, "https://shop/mira") {
		t.Error("shop link should only be used when the template has a placeholder")
	}

	withShop := c.FromTemplate("{item_name} {shop_link}")
	if withShop != "Silk Gown https://shop/mira" {
		t.Errorf("FromTemplate with shop = %q", withShop)
	}

	c.ShopLink = ""
	c.ExtraTags = "#Gothic"
	tagged := c.FromTemplate("{item_name} {shop_link}")
	if tagged != "Silk Gown {shop_link}\n\n#Gothic" {
		t.Errorf("FromTemplate with tags = %q", tagged)
	}
}

func TestIMVUCaptionDefault(t *testing.T) {
	c := IMVUCaption{ItemName: "Silk Gown", CreatorName: "Mira Rose", ItemID: "1", ManufacturerID: "2"}
	want := "✨ Silk Gown ✨\n\nCreator: Mira Rose\nItem ID: 1\nManufacturer ID: 2\n\n#IMVU #Fashion #Modeling #MiraRose"
	if got := c.Default(); got != want {
		t.Errorf("Default =\n%q\nwant\n%q", got, want)
	}

	c.ShopLink = "link"
	c.ExtraTags = "#New"
	got := c.Default()
	if !strings.Contains(got, "Manufacturer ID: 2\nShop: link\n\n#IMVU") || !strings.HasSuffix(got, "#MiraRose\n#New") {
		t.Errorf("Default with extras = %q", got)
	}
}

func TestInstagramCaption(t *testing.T) {
	c := InstagramCaption{
		ItemName: "Gown", CreatorName: "Mira", CreatorInstagram: "mira", AgencyInstagram: "lnb", ItemID: "9",
	}

	got := c.FromTemplate("{item_name} by @{creator_instagram}", []string{"#IMVU", "#Fashion"})
	if got != "Gown by @mira\n\n#IMVU #Fashion" {
		t.Errorf("FromTemplate = %q", got)
	}

	c.ExtraTags = "#Extra"
	got = c.FromTemplate("{item_name}", nil)
	if got != "Gown\n#Extra" {
		t.Errorf("FromTemplate without required tags = %q", got)
	}

	def := c.Default()
	if !strings.HasPrefix(def, "✨ Gown ✨\n\nLoving this beautiful piece by @mira!") ||
		!strings.Contains(def, "#VirtualFashion #mira #lnb\n#Extra") {
		t.Errorf("Default = %q", def)
	}
}

func TestStreamRequest(t *testing.T) {
	r := StreamRequest{ItemName: "Gown", CreatorName: "Mira", IMVULink: "imvu.com/me", InstagramHandle: "me"}
	got := r.FromTemplate("{item_name}/{creator_name}/{imvu_link}/@{instagram_handle}")
	if got != "Gown/Mira/imvu.com/me/@me" {
		t.Errorf("FromTemplate = %q", got)
	}

	def := RequestPlaceholder.Default()
	if !strings.Contains(def, "request [Item Name] by [Creator Name]") || !strings.Contains(def, "Instagram: @[Your Instagram Handle]") {
		t.Errorf("placeholder Default = %q", def)
	}
}

func TestDetailedReview(t *testing.T) {
	r := ItemReview{
		ItemName: "Gown", ItemType: "dress", Style: "gothic", ColorScheme: "black and red",
		Rating: 4, CreatorName: "Mira",
	}
	got := r.Detailed()
	if !strings.Contains(got, "perfect for dark themed events, alternative gatherings, and even mystical occasions") {
		t.Errorf("occasions missing: %q", got)
	}
	if strings.Contains(got, "I especially love") {
		t.Error("special features sentence should be omitted when empty")
	}
	if !strings.HasSuffix(got, "⭐⭐⭐⭐") || strings.HasSuffix(got, "⭐⭐⭐⭐⭐") {
		t.Errorf("rating stars wrong: %q", got)
	}

	r.Style = "unknown"
	r.SpecialFeatures = "lace trim"
	got = r.Detailed()
	if !strings.Contains(got, "various occasions, different events, and even multiple settings") {
		t.Errorf("fallback occasions missing: %q", got)
	}
	if !strings.Contains(got, "I especially love the lace trim") {
		t.Errorf("special features missing: %q", got)
	}
}

func TestTemplateFor(t *testing.T) {
	if TemplateFor("hair").Title != "Hair Review Template" {
		t.Error("hair template not selected")
	}
	if TemplateFor("shoes").Title != "Outfit Review Template" {
		t.Error("unknown item types should fall back to outfit")
	}
}

func TestTitle(t *testing.T) {
	if Title("streetwear") != "Streetwear" || Title("") != "" {
		t.Error("Title mismatch")
	}
}
