package exchange

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
)

const (
	nsSoap     = "http://schemas.xmlsoap.org/soap/envelope/"
	nsTypes    = "http://schemas.microsoft.com/exchange/services/2006/types"
	nsMessages = "http://schemas.microsoft.com/exchange/services/2006/messages"

	serverVersion = "Exchange2013_SP1"
)

// calendarFields are the properties read from the calendar view.
var calendarFields = []string{
	"item:Subject",
	"calendar:Start",
	"calendar:End",
	"calendar:IsAllDayEvent",
	"calendar:Location",
	"calendar:Organizer",
}

// newEnvelope returns a SOAP document and its body element.
func newEnvelope() (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	env := doc.CreateElement("soap:Envelope")
	env.CreateAttr("xmlns:soap", nsSoap)
	env.CreateAttr("xmlns:t", nsTypes)
	env.CreateAttr("xmlns:m", nsMessages)

	header := env.CreateElement("soap:Header")
	header.CreateElement("t:RequestServerVersion").CreateAttr("Version", serverVersion)

	return doc, env.CreateElement("soap:Body")
}

// findItemRequest builds a CalendarView FindItem over [start, end].
// The server expands recurring series into occurrences.
func findItemRequest(mailbox string, start, end time.Time) ([]byte, error) {
	doc, body := newEnvelope()

	find := body.CreateElement("m:FindItem")
	find.CreateAttr("Traversal", "Shallow")

	shape := find.CreateElement("m:ItemShape")
	shape.CreateElement("t:BaseShape").SetText("IdOnly")
	props := shape.CreateElement("t:AdditionalProperties")
	for _, f := range calendarFields {
		props.CreateElement("t:FieldURI").CreateAttr("FieldURI", f)
	}

	view := find.CreateElement("m:CalendarView")
	view.CreateAttr("StartDate", start.UTC().Format(time.RFC3339))
	view.CreateAttr("EndDate", end.UTC().Format(time.RFC3339))

	folder := find.CreateElement("m:ParentFolderIds").CreateElement("t:DistinguishedFolderId")
	folder.CreateAttr("Id", "calendar")
	if mailbox != "" {
		folder.CreateElement("t:Mailbox").CreateElement("t:EmailAddress").SetText(mailbox)
	}

	return doc.WriteToBytes()
}

// getItemRequest builds a GetItem returning the plain-text body of each id.
func getItemRequest(ids []string) ([]byte, error) {
	doc, body := newEnvelope()

	get := body.CreateElement("m:GetItem")
	shape := get.CreateElement("m:ItemShape")
	shape.CreateElement("t:BaseShape").SetText("IdOnly")
	shape.CreateElement("t:BodyType").SetText("Text")
	shape.CreateElement("t:AdditionalProperties").CreateElement("t:FieldURI").CreateAttr("FieldURI", "item:Body")

	itemIDs := get.CreateElement("m:ItemIds")
	for _, id := range ids {
		itemIDs.CreateElement("t:ItemId").CreateAttr("Id", id)
	}

	return doc.WriteToBytes()
}

// calendarItem is the raw view of one occurrence.
type calendarItem struct {
	ID        string
	Subject   string
	Start     string
	End       string
	AllDay    bool
	Location  string
	Organizer string
}

// responseError is an EWS error response message or SOAP fault.
type responseError struct {
	Code    string
	Message string
}

func (e *responseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// parseResponse reads a SOAP reply and returns its response messages.
// The first error message or fault is returned as *responseError.
func parseResponse(data []byte, messageTag string) ([]*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing xml response: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("xml response has no root element")
	}

	if fault := doc.FindElement("//Fault"); fault != nil {
		return nil, &responseError{Code: childText(fault, "faultcode"), Message: childText(fault, "faultstring")}
	}

	messages := doc.FindElements("//" + messageTag)
	for _, msg := range messages {
		if msg.SelectAttrValue("ResponseClass", "") == "Error" {
			return nil, &responseError{Code: childText(msg, "ResponseCode"), Message: childText(msg, "MessageText")}
		}
	}
	return messages, nil
}

// parseFindItem returns the occurrences of a FindItem reply and whether the view was complete.
func parseFindItem(data []byte) ([]calendarItem, bool, error) {
	messages, err := parseResponse(data, "FindItemResponseMessage")
	if err != nil {
		return nil, false, err
	}
	if len(messages) == 0 {
		return nil, false, fmt.Errorf("no FindItem response message")
	}

	root := messages[0].FindElement("./RootFolder")
	if root == nil {
		return nil, false, fmt.Errorf("FindItem response has no root folder")
	}
	complete := root.SelectAttrValue("IncludesLastItemInRange", "true") == "true"

	var items []calendarItem
	for _, el := range root.FindElements("./Items/CalendarItem") {
		item := calendarItem{
			Subject:  childText(el, "Subject"),
			Start:    childText(el, "Start"),
			End:      childText(el, "End"),
			AllDay:   strings.EqualFold(childText(el, "IsAllDayEvent"), "true"),
			Location: childText(el, "Location"),
		}
		if id := el.SelectElement("ItemId"); id != nil {
			item.ID = id.SelectAttrValue("Id", "")
		}
		if addr := el.FindElement("./Organizer/Mailbox/EmailAddress"); addr != nil {
			item.Organizer = strings.TrimSpace(addr.Text())
		}
		items = append(items, item)
	}

	return items, complete, nil
}

// parseGetItem returns the text body of every item, keyed by item id.
func parseGetItem(data []byte) (map[string]string, error) {
	messages, err := parseResponse(data, "GetItemResponseMessage")
	if err != nil {
		return nil, err
	}

	bodies := make(map[string]string, len(messages))
	for _, msg := range messages {
		for _, el := range msg.FindElements("./Items/*") {
			id := el.SelectElement("ItemId")
			if id == nil {
				continue
			}
			body := ""
			if b := el.SelectElement("Body"); b != nil {
				body = b.Text()
			}
			bodies[id.SelectAttrValue("Id", "")] = body
		}
	}
	return bodies, nil
}

func childText(el *etree.Element, tag string) string {
	if c := el.SelectElement(tag); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}
