package wsaa

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/rezonia/wsmtxca-client/internal/model"
)

// TRA validity window around the generation instant
const traWindow = 10 * time.Minute

// BuildTRA builds the unsigned login ticket request for service. The
// request is valid from ten minutes before now to ten minutes after.
func BuildTRA(service string, now time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("loginTicketRequest")
	root.CreateAttr("version", "1.0")

	header := root.CreateElement("header")
	header.CreateElement("uniqueId").SetText(strconv.FormatInt(now.Unix(), 10))
	header.CreateElement("generationTime").SetText(now.Add(-traWindow).Format(time.RFC3339))
	header.CreateElement("expirationTime").SetText(now.Add(traWindow).Format(time.RFC3339))

	root.CreateElement("service").SetText(service)

	doc.Indent(2)
	return doc.WriteToBytes()
}

// ParseTicket reads a loginTicketResponse document into an access ticket
// for the given represented tax ID.
func ParseTicket(data []byte, representedTaxID int64) (*model.AuthTicket, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse ticket XML: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "loginTicketResponse" {
		return nil, fmt.Errorf("not a loginTicketResponse document")
	}

	token := elementText(root, "credentials/token")
	sign := elementText(root, "credentials/sign")
	if token == "" || sign == "" {
		return nil, fmt.Errorf("ticket without credentials")
	}

	rawExpiry := elementText(root, "header/expirationTime")
	expiry, err := time.Parse(time.RFC3339, rawExpiry)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket expiration %q: %w", rawExpiry, err)
	}

	return &model.AuthTicket{
		Token:            token,
		Sign:             sign,
		RepresentedTaxID: representedTaxID,
		Expiry:           expiry,
	}, nil
}

func elementText(root *etree.Element, path string) string {
	elem := root.FindElement(path)
	if elem == nil {
		return ""
	}
	return strings.TrimSpace(elem.Text())
}
