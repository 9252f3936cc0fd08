package caseview

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"text/tabwriter"

	"github.com/smallbiznis/chargedesk/internal/assistant"
	"github.com/smallbiznis/chargedesk/internal/config"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(
	template.New("dashboard.html").
		Funcs(template.FuncMap{"pretty": prettyJSON}).
		ParseFS(templateFS, "templates/dashboard.html"),
)

// Page is everything the dashboard shows.
type Page struct {
	Display   config.DisplayConfig
	View      Snapshot
	Assistant assistant.Snapshot
}

func RenderHTML(w io.Writer, page Page) error {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, page); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderText writes the view as a terminal table.
func RenderText(w io.Writer, snap Snapshot, display config.DisplayConfig) error {
	switch snap.State {
	case StateLoading:
		_, err := fmt.Fprintln(w, "Loading cases...")
		return err
	case StateError:
		_, err := fmt.Fprintln(w, display.ErrorMessage)
		return err
	case StateEmpty:
		_, err := fmt.Fprintln(w, display.EmptyMessage)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tRISK\tAMOUNT\tDISPUTED\tRESPOND BY\tFRAUD\tCUSTOMER\tMERCHANT")
	for _, c := range snap.Cards {
		fmt.Fprintf(tw, "%s\t%s (%s)\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ChargebackID,
			c.StatusLabel, c.StatusClass,
			c.RiskClass,
			c.ChargebackAmount,
			c.DisputeDate,
			c.ResponseDeadline,
			c.FraudScore,
			c.CustomerName,
			c.MerchantName,
		)
	}
	return tw.Flush()
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
