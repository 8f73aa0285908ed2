package mcp

import (
	"context"
	"fmt"

	"office-attendance/internal/service"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// WindowArgs selects the analysed window and segment. Its fields mirror
// service.Query.
type WindowArgs struct {
	Start   string `json:"start,omitempty" jsonschema:"First day of the window (YYYY-MM-DD). Open when omitted."`
	End     string `json:"end,omitempty" jsonschema:"Last day of the window (YYYY-MM-DD). Open when omitted."`
	Days    int    `json:"days,omitempty" jsonschema:"Number of days ending on the latest badge date. Ignored when start or end is given."`
	Segment string `json:"segment,omitempty" jsonschema:"Segment tag as listed by attendance_session. Defaults to the configured segment."`
}

// ExplainArgs identifies an employee and a date.
type ExplainArgs struct {
	Employee string `json:"employee" jsonschema:"Employee number or exact name (Last, First)"`
	Date     string `json:"date" jsonschema:"Calendar date to explain (YYYY-MM-DD)"`
	Segment  string `json:"segment,omitempty" jsonschema:"Segment tag. Defaults to the configured segment."`
}

// ExportArgs selects a window and the export formats.
type ExportArgs struct {
	Start        string `json:"start,omitempty" jsonschema:"First day of the window (YYYY-MM-DD)"`
	End          string `json:"end,omitempty" jsonschema:"Last day of the window (YYYY-MM-DD)"`
	Days         int    `json:"days,omitempty" jsonschema:"Number of days ending on the latest badge date"`
	Segment      string `json:"segment,omitempty" jsonschema:"Segment tag"`
	Formats      string `json:"formats,omitempty" jsonschema:"Comma separated list of csv, json, md and sqlite. Defaults to csv."`
	IncludeFacts bool   `json:"include_facts,omitempty" jsonschema:"Also export the employee-day fact table"`
}

// NoArgs is the input of tools without parameters.
type NoArgs struct{}

func (s *Server) registerTools() error {
	windowDates := []string{"start", "end"}

	var err error
	register := func(e error) {
		if err == nil {
			err = e
		}
	}
	register(addTool(s, "attendance_session",
		"Load the badge log, roster and status history (once per session) and describe the loaded data: date range, counts and the available segments. Call this first.",
		nil, s.handleSession))
	register(addTool(s, "attendance_daily",
		"Daily attendance for the segment: eligible headcount, eligible employees present, other employees present and the percentage, one row per office day.",
		windowDates, s.handleDaily))
	register(addTool(s, "attendance_weekly",
		"Weekly attendance averaged over the core office days of each week.",
		windowDates, s.handleWeekly))
	register(addTool(s, "attendance_stability",
		"Process behavior (XmR) chart of weekly attendance: average, natural process limits and signals showing whether attendance is stable or shifting.",
		windowDates, s.handleStability))
	register(addTool(s, "attendance_period",
		"Summary of the whole window (averaged over core office days) plus the day-of-week breakdown.",
		windowDates, s.handlePeriod))
	register(addTool(s, "attendance_division",
		"Core-day attendance per division and the division breakdown of who came in: in segment, same status elsewhere, full-time other status or other.",
		windowDates, s.handleDivision))
	register(addTool(s, "attendance_employees",
		"Per-employee summary with days attended, eligible core days, attendance rate and arrival times.",
		windowDates, s.handleEmployees))
	register(addTool(s, "attendance_quality",
		"Data-quality report: unparsable rows, duplicate swipes, unresolved badge identities, roster and history problems and badge activity outside employment.",
		nil, s.handleQuality))
	register(addTool(s, "explain_eligibility",
		"Explain why an employee is or is not counted in the segment denominator on a date.",
		[]string{"date"}, s.handleExplain))
	register(addTool(s, "export_report",
		"Write the report tables of the window to the export directory as CSV, JSON, Markdown with charts or SQLite and return the file paths.",
		windowDates, s.handleExport))
	register(addTool(s, "reload_data",
		"Discard the session and load the source files again, e.g. after a badge log merge.",
		nil, s.handleReload))
	return err
}

func addTool[In any](s *Server, name, description string, dateProps []string, h func(context.Context, In) (any, error)) error {
	schema, err := schemaFor[In](dateProps...)
	if err != nil {
		return fmt.Errorf("failed to build schema for %s: %w", name, err)
	}
	sdk.AddTool(s.mcp, &sdk.Tool{Name: name, Description: description, InputSchema: schema},
		func(ctx context.Context, _ *sdk.CallToolRequest, in In) (*sdk.CallToolResult, any, error) {
			log.Debug().Str("tool", name).Interface("args", in).Msg("Tool call")
			data, err := h(ctx, in)
			if err != nil {
				log.Warn().Err(err).Str("tool", name).Msg("Tool call failed")
				return nil, nil, err
			}
			res, err := textResult(data)
			return res, nil, err
		})
	return nil
}

func queryOf(a WindowArgs) service.Query {
	return service.Query(a)
}
