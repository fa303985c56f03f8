package Reports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"Kestrel/Inspections"
	"Kestrel/Models"
	"Kestrel/Sheets"
	"Kestrel/email"
)

const templateSheet = "R06-PT-19"

// RecipientSource resolves a branch's report distribution list. Backed by
// the fleet registry.
type RecipientSource interface {
	BranchRecipients(branch string) []string
}

// Notifier is told when an entry report finished, for the dispatcher push.
type Notifier interface {
	ReportReady(payload Inspections.ReportPayload, driveLink string)
}

// Pipeline turns a completed entry inspection into the archived R06-PT-19
// document: fill the template spreadsheet, export it as PDF, upload the PDF
// to the shared Drive folder, then mail it to the branch. It implements
// Inspections.ReportDispatcher.
type Pipeline struct {
	Values     Sheets.Values
	Tokens     oauth2.TokenSource
	Recipients RecipientSource
	Notifier   Notifier

	TemplateID    string
	DriveFolderID string
	EmailConfig   Models.EmailConfig

	// HTTPClient is swappable for tests; nil means a 60s default.
	HTTPClient *http.Client

	// The template spreadsheet is shared mutable state: fill and export
	// must not interleave across two reports.
	templateMu sync.Mutex
}

// NewPipeline wires the pipeline from the environment. The template
// spreadsheet ID and the Drive folder come from the same service account
// configuration as the inspection store.
func NewPipeline(values Sheets.Values, tokens oauth2.TokenSource, recipients RecipientSource, notifier Notifier) (*Pipeline, error) {
	templateID := os.Getenv("GOOGLE_R06PT19REVISIONDEVEHICULOS")
	folderID := os.Getenv("GOOGLE_DRIVE_FOLDER_ID")
	if templateID == "" || folderID == "" {
		return nil, fmt.Errorf("missing GOOGLE_R06PT19REVISIONDEVEHICULOS or GOOGLE_DRIVE_FOLDER_ID")
	}
	return &Pipeline{
		Values:        values,
		Tokens:        tokens,
		Recipients:    recipients,
		Notifier:      notifier,
		TemplateID:    templateID,
		DriveFolderID: folderID,
		EmailConfig:   Models.LoadEmailConfig(),
	}, nil
}

// Dispatch runs the full pipeline. The inspection row is already committed
// when this runs; a failure here is reported back but never unwinds it.
func (p *Pipeline) Dispatch(ctx context.Context, payload Inspections.ReportPayload) error {
	p.templateMu.Lock()
	err := p.FillTemplate(ctx, payload)
	var pdf []byte
	if err == nil {
		pdf, err = p.ExportPDF(ctx)
	}
	p.templateMu.Unlock()
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	link, err := p.UploadToDrive(ctx, payload.FileName(), pdf)
	if err != nil {
		return fmt.Errorf("upload to drive: %w", err)
	}

	if err := p.SendReportEmail(payload, link, pdf); err != nil {
		// The document is archived at this point, a dead mailbox should not
		// look like a failed report.
		log.Printf("Report email for %s failed: %v", payload.Plate, err)
	}

	if p.Notifier != nil {
		p.Notifier.ReportReady(payload, link)
	}

	log.Printf("Report %s archived at %s", payload.FileName(), link)
	return nil
}

// FillTemplate writes the payload over the template spreadsheet in one
// batch. The cell map mirrors the printed R06-PT-19 form.
func (p *Pipeline) FillTemplate(ctx context.Context, payload Inspections.ReportPayload) error {
	set := func(cell string, value string) Sheets.ValueRange {
		return Sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s", templateSheet, cell),
			Values: [][]interface{}{{value}},
		}
	}

	data := []Sheets.ValueRange{
		set("E5", payload.DateCode),
		set("K5", strconv.Itoa(payload.Consecutive)),
		set("E7", payload.Plate),
		set("K7", payload.Branch),
		set("E8", payload.Driver),
		set("K8", payload.VehicleType),
		set("E10", payload.ExitOdometer),
		set("K10", payload.EntryOdometer),
		set("E11", payload.ExitTime),
		set("K11", payload.EntryTime),
		set("C26", payload.TireRemarks),
		set("C34", payload.FluidRemarks),
		set("C41", payload.VisualRemarks),
		set("C78", payload.GeneralRemarks),
	}

	for i, tire := range payload.Tires {
		row := 15 + i
		data = append(data,
			set(fmt.Sprintf("D%d", row), tire.FP),
			set(fmt.Sprintf("E%d", row), tire.PE),
			set(fmt.Sprintf("F%d", row), tire.PA),
			set(fmt.Sprintf("G%d", row), tire.Wear),
		)
	}
	for i, fluid := range payload.Fluids {
		row := 29 + i
		data = append(data,
			set(fmt.Sprintf("D%d", row), fluid.Required),
			set(fmt.Sprintf("E%d", row), fluid.Full),
		)
	}
	for i, visual := range payload.Visuals {
		data = append(data, set(fmt.Sprintf("D%d", 37+i), visual))
	}
	for i, light := range payload.Lights {
		data = append(data, set(fmt.Sprintf("D%d", 44+i), light))
	}
	for i, supply := range payload.Supplies {
		data = append(data, set(fmt.Sprintf("H%d", 44+i), supply))
	}
	for i, document := range payload.Documents {
		data = append(data, set(fmt.Sprintf("D%d", 54+i), document))
	}
	for i, damage := range payload.Damages {
		row := 64 + i
		data = append(data,
			set(fmt.Sprintf("C%d", row), damage.View),
			set(fmt.Sprintf("D%d", row), damage.Scratches),
			set(fmt.Sprintf("E%d", row), damage.Dents),
			set(fmt.Sprintf("F%d", row), damage.Cracks),
			set(fmt.Sprintf("G%d", row), damage.Missing),
		)
	}
	for i, revision := range payload.Revisions {
		data = append(data, set(fmt.Sprintf("H%d", 64+i), revision))
	}

	return p.Values.BatchUpdate(ctx, p.TemplateID, data)
}

// ExportPDF downloads the filled template as a legal-size PDF through the
// spreadsheet export endpoint.
func (p *Pipeline) ExportPDF(ctx context.Context) ([]byte, error) {
	token, err := p.Tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("get access token: %w", err)
	}

	query := url.Values{}
	query.Set("format", "pdf")
	query.Set("size", "8.5x14")
	query.Set("portrait", "true")
	query.Set("fitw", "true")
	query.Set("gridlines", "false")
	exportURL := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?%s", p.TemplateID, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, err
	}
	token.SetAuthHeader(req)

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("export returned %d: %s", resp.StatusCode, body)
	}
	return io.ReadAll(resp.Body)
}

// UploadToDrive stores the PDF in the shared folder, makes it readable by
// link and returns the view link the email and the push carry.
func (p *Pipeline) UploadToDrive(ctx context.Context, fileName string, pdf []byte) (string, error) {
	service, err := drive.NewService(ctx, option.WithTokenSource(p.Tokens))
	if err != nil {
		return "", fmt.Errorf("create drive service: %w", err)
	}

	file := &drive.File{
		Name:     fileName,
		MimeType: "application/pdf",
		Parents:  []string{p.DriveFolderID},
	}
	created, err := service.Files.Create(file).
		Media(bytes.NewReader(pdf)).
		Fields("id, webViewLink").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	_, err = service.Permissions.Create(created.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("share file: %w", err)
	}

	if created.WebViewLink != "" {
		return created.WebViewLink, nil
	}
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", created.Id), nil
}

// SendReportEmail mails the PDF to the branch's distribution list.
func (p *Pipeline) SendReportEmail(payload Inspections.ReportPayload, driveLink string, pdf []byte) error {
	var recipients []string
	if p.Recipients != nil {
		recipients = p.Recipients.BranchRecipients(payload.Branch)
	}
	if len(recipients) == 0 {
		log.Printf("No recipients configured for branch %q, skipping report email", payload.Branch)
		return nil
	}

	body := fmt.Sprintf(
		"<p>Se completó la revisión de vehículos del vehículo <b>%s</b>.</p>"+
			"<p>Consecutivo: <b>%d</b><br>Sucursal: %s<br>Conductor: %s<br>Fecha: %s</p>"+
			"<p><a href=%q>Ver documento en Drive</a></p>",
		payload.Plate, payload.Consecutive, payload.Branch, payload.Driver,
		time.Now().Format("02/01/2006"), driveLink,
	)

	return email.SendEmail(p.EmailConfig, Models.EmailMessage{
		To:      recipients,
		Subject: fmt.Sprintf("R06-PT-19 %s #%d", payload.Plate, payload.Consecutive),
		Body:    body,
		IsHTML:  true,
		Attachments: []Models.Attachment{{
			Filename: payload.FileName(),
			Data:     pdf,
			MimeType: "application/pdf",
		}},
	})
}

func (p *Pipeline) httpClient() *http.Client {
	if p.HTTPClient != nil {
		return p.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}
