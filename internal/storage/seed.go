package storage

import "fmt"

// defaultTemplates are inserted the first time the agency_templates table is
// found empty.
var defaultTemplates = []AgencyTemplate{
	{
		AgencyName:             "Ladies & Babes",
		IMVUCaptionFormat:      "✨ {item_name} ✨\n\nCreator: {creator_name}\nItem ID: {item_id}\nManufacturer ID: {manufacturer_id}\n\n#IMVU #Fashion #Modeling #LadiesAndBabes",
		InstagramCaptionFormat: "✨ {item_name} ✨\n\nLoving this beautiful piece by @{creator_instagram}!\n\nItem ID: {item_id}\n\n#IMVU #Fashion #Modeling #VirtualFashion #LadiesAndBabes #@{creator_instagram}",
		RequiredTags:           []string{"#IMVU", "#Fashion", "#Modeling", "#LadiesAndBabes"},
		RequestFormat:          "Hi! I would love to request {item_name} by {creator_name} for streaming!\n\nIMVU Link: {imvu_link}\nInstagram: @{instagram_handle}\n\nThank you for considering my request! 💕",
	},
	{
		AgencyName:             "Default",
		IMVUCaptionFormat:      "✨ {item_name} ✨\n\nCreator: {creator_name}\nItem ID: {item_id}\nManufacturer ID: {manufacturer_id}\n\n#IMVU #Fashion #Modeling",
		InstagramCaptionFormat: "✨ {item_name} ✨\n\nBeautiful piece by @{creator_instagram}!\n\nItem ID: {item_id}\n\n#IMVU #Fashion #Modeling #VirtualFashion",
		RequiredTags:           []string{"#IMVU", "#Fashion", "#Modeling"},
		RequestFormat:          "Hi! I would love to request {item_name} by {creator_name} for streaming!\n\nIMVU Link: {imvu_link}\nInstagram: @{instagram_handle}\n\nThank you! 💕",
	},
}

// SeedDefaultTemplates inserts the built-in agency templates when the table
// is empty and reports whether it did.
func (s *SQLStore) SeedDefaultTemplates() (bool, error) {
	var count int
	if err := s.queryRow("SELECT COUNT(*) FROM agency_templates").Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count agency templates: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	stmt := rebind(s.driver, `INSERT INTO agency_templates (agency_name, imvu_caption_format, instagram_caption_format,
		required_tags, optional_tags, request_format, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(agency_name) DO NOTHING`)
	now := s.stamp()
	for _, t := range defaultTemplates {
		_, err := tx.Exec(stmt, t.AgencyName, t.IMVUCaptionFormat, t.InstagramCaptionFormat,
			encodeList(t.RequiredTags), encodeList(t.OptionalTags), t.RequestFormat, true, now, now)
		if err != nil {
			return false, fmt.Errorf("failed to insert template %q: %w", t.AgencyName, err)
		}
	}
	return true, tx.Commit()
}
