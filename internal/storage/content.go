package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Captions

const captionColumns = `id, user_id, stream_id, platform, caption_text, agency_format, tags, created_at`

func scanCaption(row rowScanner) (*Caption, error) {
	var c Caption
	var streamID sql.NullInt64
	var agency sql.NullString
	var tags string
	if err := row.Scan(&c.ID, &c.UserID, &streamID, &c.Platform, &c.CaptionText, &agency, &tags, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.StreamID = optionalID(streamID)
	c.AgencyFormat = agency.String
	c.Tags = decodeList(tags)
	return &c, nil
}

func collectCaptions(rows *sql.Rows) ([]Caption, error) {
	defer rows.Close()
	var out []Caption
	for rows.Next() {
		c, err := scanCaption(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan caption: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// SaveCaption appends a generated caption to the log.
func (s *SQLStore) SaveCaption(c *Caption) (*Caption, error) {
	owner, err := s.owner(c.UserID)
	if err != nil {
		return nil, err
	}
	platform, err := ParsePlatform(string(c.Platform))
	if err != nil {
		return nil, err
	}

	var id int64
	err = s.queryRow(`INSERT INTO captions (user_id, stream_id, platform, caption_text, agency_format, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		owner, c.StreamID, string(platform), c.CaptionText, nullString(c.AgencyFormat), encodeList(c.Tags), s.stamp(),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to save caption: %w", err)
	}
	out, err := scanCaption(s.queryRow("SELECT "+captionColumns+" FROM captions WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("failed to read caption: %w", err)
	}
	return out, nil
}

// GetCaptionsByStream returns the captions attached to a stream, newest first.
func (s *SQLStore) GetCaptionsByStream(streamID int64) ([]Caption, error) {
	rows, err := s.query("SELECT "+captionColumns+" FROM captions WHERE stream_id = ? ORDER BY created_at DESC, id DESC", streamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get captions: %w", err)
	}
	return collectCaptions(rows)
}

// ListCaptions returns a user's captions, newest first.
func (s *SQLStore) ListCaptions(userID string) ([]Caption, error) {
	rows, err := s.query("SELECT "+captionColumns+" FROM captions WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list captions: %w", err)
	}
	return collectCaptions(rows)
}

// Reviews

const reviewColumns = `id, user_id, stream_id, item_name, item_id, review_text, rating, created_at`

func scanReview(row rowScanner) (*Review, error) {
	var r Review
	var streamID, rating sql.NullInt64
	var itemID sql.NullString
	if err := row.Scan(&r.ID, &r.UserID, &streamID, &r.ItemName, &itemID, &r.ReviewText, &rating, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.StreamID = optionalID(streamID)
	r.ItemID = itemID.String
	if rating.Valid {
		v := int(rating.Int64)
		r.Rating = &v
	}
	return &r, nil
}

func collectReviews(rows *sql.Rows) ([]Review, error) {
	defer rows.Close()
	var out []Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// SaveReview appends a review. The rating range is checked by callers.
func (s *SQLStore) SaveReview(r *Review) (*Review, error) {
	owner, err := s.owner(r.UserID)
	if err != nil {
		return nil, err
	}
	var id int64
	err = s.queryRow(`INSERT INTO reviews (user_id, stream_id, item_name, item_id, review_text, rating, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		owner, r.StreamID, r.ItemName, nullString(r.ItemID), r.ReviewText, r.Rating, s.stamp(),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	out, err := scanReview(s.queryRow("SELECT "+reviewColumns+" FROM reviews WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("failed to read review: %w", err)
	}
	return out, nil
}

// GetReviewsByStream returns the reviews attached to a stream, newest first.
func (s *SQLStore) GetReviewsByStream(streamID int64) ([]Review, error) {
	rows, err := s.query("SELECT "+reviewColumns+" FROM reviews WHERE stream_id = ? ORDER BY created_at DESC, id DESC", streamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	return collectReviews(rows)
}

// GetUserReviews returns up to limit of a user's most recent reviews.
func (s *SQLStore) GetUserReviews(userID string, limit int) ([]Review, error) {
	rows, err := s.query("SELECT "+reviewColumns+" FROM reviews WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?", userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reviews: %w", err)
	}
	return collectReviews(rows)
}

// Profiles

const profileColumns = `id, user_id, imvu_name, instagram_handle, preferred_agencies, caption_style,
	timezone, reminder_settings, created_at, updated_at`

func scanProfile(row rowScanner) (*UserProfile, error) {
	var p UserProfile
	var imvu, insta, tz sql.NullString
	var agencies, settings string
	err := row.Scan(&p.ID, &p.UserID, &imvu, &insta, &agencies, &p.CaptionStyle, &tz, &settings, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.IMVUName = imvu.String
	p.InstagramHandle = insta.String
	p.Timezone = tz.String
	p.PreferredAgencies = decodeList(agencies)
	p.ReminderSettings = DefaultReminderSettings()
	if settings != "" {
		_ = json.Unmarshal([]byte(settings), &p.ReminderSettings)
	}
	return &p, nil
}

// CreateOrUpdateProfile upserts the profile keyed on user_id.
func (s *SQLStore) CreateOrUpdateProfile(p *UserProfile) (*UserProfile, error) {
	owner, err := s.owner(p.UserID)
	if err != nil {
		return nil, err
	}
	style, err := ParseCaptionStyle(string(p.CaptionStyle))
	if err != nil {
		return nil, err
	}
	settings, err := json.Marshal(p.ReminderSettings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reminder settings: %w", err)
	}

	now := s.stamp()
	_, err = s.exec(`INSERT INTO user_profiles (user_id, imvu_name, instagram_handle, preferred_agencies,
		caption_style, timezone, reminder_settings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
		  imvu_name = excluded.imvu_name,
		  instagram_handle = excluded.instagram_handle,
		  preferred_agencies = excluded.preferred_agencies,
		  caption_style = excluded.caption_style,
		  timezone = excluded.timezone,
		  reminder_settings = excluded.reminder_settings,
		  updated_at = excluded.updated_at`,
		owner, nullString(p.IMVUName), nullString(p.InstagramHandle), encodeList(p.PreferredAgencies),
		string(style), nullString(p.Timezone), string(settings), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return s.GetUserProfile(owner)
}

// GetUserProfile returns the profile for userID, or nil when none exists.
func (s *SQLStore) GetUserProfile(userID string) (*UserProfile, error) {
	p, err := scanProfile(s.queryRow("SELECT "+profileColumns+" FROM user_profiles WHERE user_id = ?", userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// Agency templates

const templateColumns = `id, agency_name, imvu_caption_format, instagram_caption_format, required_tags,
	optional_tags, request_format, is_active, created_at, updated_at`

func scanTemplate(row rowScanner) (*AgencyTemplate, error) {
	var t AgencyTemplate
	var imvu, insta, request sql.NullString
	var required, optional string
	err := row.Scan(&t.ID, &t.AgencyName, &imvu, &insta, &required, &optional, &request, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.IMVUCaptionFormat = imvu.String
	t.InstagramCaptionFormat = insta.String
	t.RequestFormat = request.String
	t.RequiredTags = decodeList(required)
	t.OptionalTags = decodeList(optional)
	return &t, nil
}

// GetAgencyTemplate looks up an active template by exact, case-sensitive
// name. It returns nil when no template matches.
func (s *SQLStore) GetAgencyTemplate(name string) (*AgencyTemplate, error) {
	t, err := scanTemplate(s.queryRow(
		"SELECT "+templateColumns+" FROM agency_templates WHERE agency_name = ? AND is_active = ?",
		name, true,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agency template: %w", err)
	}
	return t, nil
}

// GetAllAgencyTemplates returns the active templates ordered by name.
func (s *SQLStore) GetAllAgencyTemplates() ([]AgencyTemplate, error) {
	rows, err := s.query("SELECT "+templateColumns+" FROM agency_templates WHERE is_active = ? ORDER BY agency_name", true)
	if err != nil {
		return nil, fmt.Errorf("failed to list agency templates: %w", err)
	}
	defer rows.Close()

	var out []AgencyTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agency template: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Settings

// GetSettings returns the user's stored settings as raw JSON values.
func (s *SQLStore) GetSettings(userID string) (map[string]json.RawMessage, error) {
	owner, err := s.owner(userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.query("SELECT key, value FROM user_settings WHERE user_id = ?", owner)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]json.RawMessage)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[k] = json.RawMessage(v)
	}
	return settings, rows.Err()
}

// SetSettings upserts each key. Keys not present are left as they are.
func (s *SQLStore) SetSettings(userID string, settings map[string]json.RawMessage) error {
	owner, err := s.owner(userID)
	if err != nil {
		return err
	}
	now := s.stamp()
	for k, v := range settings {
		if !json.Valid(v) {
			return fmt.Errorf("%w: setting %q is not valid JSON", ErrInvalidValue, k)
		}
		_, err := s.exec(`INSERT INTO user_settings (user_id, key, value, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(user_id, key) DO UPDATE SET
			  value = excluded.value,
			  updated_at = excluded.updated_at`,
			owner, k, string(v), now,
		)
		if err != nil {
			return fmt.Errorf("set setting %q: %w", k, err)
		}
	}
	return nil
}
