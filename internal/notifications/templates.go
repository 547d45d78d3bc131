package notifications

import (
	"bytes"
	"html/template"
	"strings"
)

const plainMessageTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.5; color: #1f2933;">
{{range .}}  <p>{{range $i, $line := .}}{{if $i}}<br/>{{end}}{{$line}}{{end}}</p>
{{end}}</body>
</html>`

const newInquiryTemplate = `<!DOCTYPE html>
<html>
<body>
  <h3>New inquiry from the website</h3>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Phone:</strong> {{if .Phone}}{{.Phone}}{{else}}not provided{{end}}</p>
  <p><strong>Product:</strong> {{.ProductInterest}}</p>
  <p><strong>Quantity:</strong> {{if .Quantity}}{{.Quantity}}{{else}}not specified{{end}}</p>
  <p><strong>Received:</strong> {{.TimeString}}</p>
  <p><strong>ID:</strong> {{.ID}}</p>
  <p><strong>Message:</strong><br/>{{.Message}}</p>
</body>
</html>`

var (
	plainMessageTmpl = template.Must(template.New("plain_message").Parse(plainMessageTemplate))
	newInquiryTmpl   = template.Must(template.New("new_inquiry").Parse(newInquiryTemplate))
)

// renderPlainMessageHTML turns a plain-text body into escaped HTML paragraphs:
// blank lines separate paragraphs, single newlines become <br/>.
func renderPlainMessageHTML(body string) (string, error) {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	paragraphs := make([][]string, 0)
	for _, block := range strings.Split(body, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		paragraphs = append(paragraphs, strings.Split(block, "\n"))
	}
	var buf bytes.Buffer
	if err := plainMessageTmpl.Execute(&buf, paragraphs); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// InquirySummary is the data shown in the internal new-inquiry alert.
type InquirySummary struct {
	ID              string
	Name            string
	Email           string
	Phone           string
	ProductInterest string
	Quantity        string
	Message         string
	TimeString      string
}

func buildNewInquiryHTML(s InquirySummary) (string, error) {
	var buf bytes.Buffer
	if err := newInquiryTmpl.Execute(&buf, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}
