package inquiries

import (
	"errors"
	"strings"
)

var ErrUnknownTemplate = errors.New("unknown reply template")

type ReplyTemplate struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Draft is an editable reply produced from a template.
type Draft struct {
	Template string `json:"template"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

var replyTemplates = []ReplyTemplate{
	{
		Key:     "price_quote",
		Title:   "Price quote",
		Subject: "Price quote for {product}",
		Body: "Dear {name},\n\nThank you for your interest in {product}. " +
			"Please find our current pricing below. Prices are quoted per tonne, ex-warehouse, " +
			"and are valid for 14 days.\n\n[price details]\n\n" +
			"Let us know the quantity and delivery location and we will confirm availability.\n\nKind regards,\nSales Team",
	},
	{
		Key:     "availability",
		Title:   "Availability",
		Subject: "{product} availability",
		Body: "Dear {name},\n\nThank you for reaching out about {product}. " +
			"We currently have stock available and can arrange delivery within 7 to 10 working days " +
			"of order confirmation.\n\nWould you like us to reserve a quantity for you?\n\nKind regards,\nSales Team",
	},
	{
		Key:     "follow_up",
		Title:   "Follow up",
		Subject: "Following up on your {product} inquiry",
		Body: "Dear {name},\n\nWe are following up on your recent inquiry about {product}. " +
			"Do you have any further questions, or is there anything else we can help you with?\n\n" +
			"Kind regards,\nSales Team",
	},
	{
		Key:     "thank_you",
		Title:   "Thank you",
		Subject: "Thank you for your order of {product}",
		Body: "Dear {name},\n\nThank you for choosing us for your {product} order. " +
			"Our logistics team will be in touch with shipping documents shortly.\n\n" +
			"We look forward to working with you again.\n\nKind regards,\nSales Team",
	},
}

// Templates returns the reply templates in display order.
func Templates() []ReplyTemplate {
	out := make([]ReplyTemplate, len(replyTemplates))
	copy(out, replyTemplates)
	return out
}

func lookupTemplate(key string) (ReplyTemplate, bool) {
	for _, t := range replyTemplates {
		if t.Key == key {
			return t, true
		}
	}
	return ReplyTemplate{}, false
}

// ApplyTemplate substitutes {name} and {product} literally into the
// template's subject and body.
func ApplyTemplate(key string, inq Inquiry) (Draft, error) {
	t, ok := lookupTemplate(strings.TrimSpace(key))
	if !ok {
		return Draft{}, ErrUnknownTemplate
	}
	r := strings.NewReplacer("{name}", inq.Name, "{product}", inq.ProductInterest)
	return Draft{
		Template: t.Key,
		Subject:  r.Replace(t.Subject),
		Body:     r.Replace(t.Body),
	}, nil
}
