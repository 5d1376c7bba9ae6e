package main

// Input types for MCP tools. The SDK infers JSON Schema from these structs.
// Pointer types and omitempty fields are optional; the rest are required.

type streamsGetInput struct {
	Status *string `json:"status,omitempty" jsonschema:"Filter by status: active, completed, overdue or all (default all)"`
}

type streamCreateInput struct {
	ItemName    string  `json:"item_name"              jsonschema:"Name of the item being modeled"`
	CreatorName string  `json:"creator_name"           jsonschema:"IMVU creator of the item"`
	DueDate     *string `json:"due_date,omitempty"     jsonschema:"Due date as RFC 3339 or YYYY-MM-DD. Either due_date or due_days is required."`
	DueDays     *int    `json:"due_days,omitempty"     jsonschema:"Days from now until due (1-7). Schedules a reminder the day before."`
	CreatorID   *string `json:"creator_id,omitempty"   jsonschema:"Creator's IMVU ID"`
	AgencyName  *string `json:"agency_name,omitempty"  jsonschema:"Agency the stream is for"`
	Priority    *string `json:"priority,omitempty"     jsonschema:"low, medium or high (default medium)"`
	StreamType  *string `json:"stream_type,omitempty"  jsonschema:"showcase, sponsored or open (default showcase)"`
	Notes       *string `json:"notes,omitempty"        jsonschema:"Free-form notes"`
}

type streamUpdateInput struct {
	ID          int64   `json:"id"                     jsonschema:"The stream ID"`
	ItemName    *string `json:"item_name,omitempty"    jsonschema:"New item name"`
	CreatorName *string `json:"creator_name,omitempty" jsonschema:"New creator name"`
	CreatorID   *string `json:"creator_id,omitempty"   jsonschema:"New creator ID"`
	AgencyName  *string `json:"agency_name,omitempty"  jsonschema:"New agency name"`
	DueDate     *string `json:"due_date,omitempty"     jsonschema:"New due date as RFC 3339 or YYYY-MM-DD"`
	Status      *string `json:"status,omitempty"       jsonschema:"active or completed"`
	Priority    *string `json:"priority,omitempty"     jsonschema:"low, medium or high"`
	StreamType  *string `json:"stream_type,omitempty"  jsonschema:"showcase, sponsored or open"`
	Notes       *string `json:"notes,omitempty"        jsonschema:"New notes"`
}

type streamIDInput struct {
	ID int64 `json:"id" jsonschema:"The stream ID"`
}

type settingsSetInput struct {
	Settings map[string]any `json:"settings" jsonschema:"Settings to merge. Keys not given are left unchanged."`
}

type importInput struct {
	Data string `json:"data" jsonschema:"A snapshot document as produced by db_export_data"`
}

type emptyInput struct{}
