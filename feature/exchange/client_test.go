package exchange

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"calendar-mirror/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const findItemOK = `<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <m:FindItemResponse xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages" xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types">
      <m:ResponseMessages>
        <m:FindItemResponseMessage ResponseClass="Success">
          <m:ResponseCode>NoError</m:ResponseCode>
          <m:RootFolder TotalItemsInView="3" IncludesLastItemInRange="true">
            <t:Items>
              <t:CalendarItem>
                <t:ItemId Id="AAMk-2" ChangeKey="x"/>
                <t:Subject>[MAIL EXTERNE]   Vendor   call</t:Subject>
                <t:Start>2030-05-07T09:00:00Z</t:Start>
                <t:End>2030-05-07T10:00:00Z</t:End>
                <t:IsAllDayEvent>false</t:IsAllDayEvent>
                <t:Location>Teams</t:Location>
                <t:Organizer><t:Mailbox><t:Name>Ann</t:Name><t:EmailAddress>ann@example.com</t:EmailAddress></t:Mailbox></t:Organizer>
              </t:CalendarItem>
              <t:CalendarItem>
                <t:ItemId Id="AAMk-1" ChangeKey="y"/>
                <t:Subject>Bank holiday</t:Subject>
                <t:Start>2030-05-07T22:00:00Z</t:Start>
                <t:End>2030-05-08T22:00:00Z</t:End>
                <t:IsAllDayEvent>true</t:IsAllDayEvent>
              </t:CalendarItem>
              <t:CalendarItem>
                <t:ItemId Id="AAMk-0" ChangeKey="z"/>
                <t:Subject></t:Subject>
                <t:Start>2030-05-06T08:00:00Z</t:Start>
                <t:End>2030-05-06T08:30:00Z</t:End>
                <t:IsAllDayEvent>false</t:IsAllDayEvent>
              </t:CalendarItem>
            </t:Items>
          </m:RootFolder>
        </m:FindItemResponseMessage>
      </m:ResponseMessages>
    </m:FindItemResponse>
  </s:Body>
</s:Envelope>`

const getItemOK = `<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <m:GetItemResponse xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages" xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types">
      <m:ResponseMessages>
        <m:GetItemResponseMessage ResponseClass="Success">
          <m:ResponseCode>NoError</m:ResponseCode>
          <m:Items><t:CalendarItem><t:ItemId Id="AAMk-2"/><t:Body BodyType="Text">Dial-in inside</t:Body></t:CalendarItem></m:Items>
        </m:GetItemResponseMessage>
        <m:GetItemResponseMessage ResponseClass="Success">
          <m:ResponseCode>NoError</m:ResponseCode>
          <m:Items><t:CalendarItem><t:ItemId Id="AAMk-1"/><t:Body BodyType="Text"></t:Body></t:CalendarItem></m:Items>
        </m:GetItemResponseMessage>
        <m:GetItemResponseMessage ResponseClass="Success">
          <m:ResponseCode>NoError</m:ResponseCode>
          <m:Items><t:CalendarItem><t:ItemId Id="AAMk-0"/><t:Body BodyType="Text">0123456789</t:Body></t:CalendarItem></m:Items>
        </m:GetItemResponseMessage>
      </m:ResponseMessages>
    </m:GetItemResponse>
  </s:Body>
</s:Envelope>`

const findItemTruncated = `<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <m:FindItemResponse xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages" xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types">
      <m:ResponseMessages>
        <m:FindItemResponseMessage ResponseClass="Success">
          <m:ResponseCode>NoError</m:ResponseCode>
          <m:RootFolder TotalItemsInView="1000" IncludesLastItemInRange="false"><t:Items/></m:RootFolder>
        </m:FindItemResponseMessage>
      </m:ResponseMessages>
    </m:FindItemResponse>
  </s:Body>
</s:Envelope>`

const findItemDenied = `<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <m:FindItemResponse xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages">
      <m:ResponseMessages>
        <m:FindItemResponseMessage ResponseClass="Error">
          <m:MessageText>The specified object was not found in the store.</m:MessageText>
          <m:ResponseCode>ErrorNonExistentMailbox</m:ResponseCode>
        </m:FindItemResponseMessage>
      </m:ResponseMessages>
    </m:FindItemResponse>
  </s:Body>
</s:Envelope>`

const soapFault = `<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <s:Fault><faultcode>a:ErrorSchemaValidation</faultcode><faultstring>The request failed schema validation.</faultstring></s:Fault>
  </s:Body>
</s:Envelope>`

// ewsServer answers FindItem and GetItem calls with the given bodies.
func ewsServer(t *testing.T, status int, findItem, getItem string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "jdoe", user)
		assert.Equal(t, "secret", pass)

		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.WriteHeader(status)
		if strings.Contains(string(body), "FindItem") {
			_, _ = w.Write([]byte(findItem))
			return
		}
		_, _ = w.Write([]byte(getItem))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url string, maxBody int) *Client {
	paris, _ := time.LoadLocation("Europe/Paris")
	return NewClient(Config{
		URL:          url,
		Username:     "jdoe",
		Password:     "secret",
		Auth:         AuthBasic,
		MaxBodyChars: maxBody,
	}, paris, nil)
}

func TestClient_FetchEvents(t *testing.T) {
	srv := ewsServer(t, http.StatusOK, findItemOK, getItemOK)
	c := newTestClient(srv.URL, 5)

	start := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	events, err := c.FetchEvents(context.Background(), start, start.AddDate(0, 0, 60))
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Ordered by start.
	assert.Equal(t, "AAMk-0", events[0].ID)
	assert.Equal(t, reconcile.Untitled, events[0].Title)
	assert.Equal(t, "01234", events[0].Body)

	assert.Equal(t, "AAMk-2", events[1].ID)
	assert.Equal(t, "Vendor call", events[1].Title)
	assert.Equal(t, "Teams", events[1].Location)
	assert.Equal(t, "ann@example.com", events[1].Organizer)
	assert.Equal(t, "Dial-", events[1].Body)
	assert.False(t, events[1].AllDay)

	holiday := events[2]
	assert.Equal(t, "AAMk-1", holiday.ID)
	assert.True(t, holiday.AllDay)
	assert.Equal(t, time.Date(2030, 5, 8, 0, 0, 0, 0, time.UTC), holiday.Start)
	assert.Equal(t, time.Date(2030, 5, 9, 0, 0, 0, 0, time.UTC), holiday.End)
}

func TestClient_FetchEvents_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		findItem string
		wantIs   error
	}{
		{"Truncated view", http.StatusOK, findItemTruncated, reconcile.ErrFetch},
		{"Unauthorized", http.StatusUnauthorized, "", reconcile.ErrAuthentication},
		{"Mailbox error", http.StatusOK, findItemDenied, reconcile.ErrAuthentication},
		{"SOAP fault", http.StatusInternalServerError, soapFault, reconcile.ErrFetch},
		{"Garbage", http.StatusOK, "not xml", reconcile.ErrFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := ewsServer(t, tt.status, tt.findItem, getItemOK)
			c := newTestClient(srv.URL, 0)

			now := time.Now().UTC()
			events, err := c.FetchEvents(context.Background(), now, now.Add(time.Hour))
			require.Error(t, err)
			assert.Nil(t, events)
			assert.ErrorIs(t, err, tt.wantIs)
		})
	}
}

func TestFindItemRequest(t *testing.T) {
	start := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	data, err := findItemRequest("room@example.com", start, start.AddDate(0, 0, 7))
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, `StartDate="2030-05-01T12:00:00Z"`)
	assert.Contains(t, body, `EndDate="2030-05-08T12:00:00Z"`)
	assert.Contains(t, body, `<t:EmailAddress>room@example.com</t:EmailAddress>`)
	assert.Contains(t, body, `FieldURI="calendar:IsAllDayEvent"`)
}

func TestGetItemRequest(t *testing.T) {
	data, err := getItemRequest([]string{"a", "b"})
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, `<t:BodyType>Text</t:BodyType>`)
	assert.Contains(t, body, `<t:ItemId Id="a"/>`)
	assert.Contains(t, body, `<t:ItemId Id="b"/>`)
}
