package tally

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parsedRequest struct {
	TallyRequest string `xml:"HEADER>TALLYREQUEST"`
	ReportName   string `xml:"BODY>EXPORTDATA>REQUESTDESC>REPORTNAME"`
	Static       struct {
		Vars []struct {
			XMLName xml.Name
			Value   string `xml:",chardata"`
		} `xml:",any"`
	} `xml:"BODY>EXPORTDATA>REQUESTDESC>STATICVARIABLES"`
}

func (p parsedRequest) vars() map[string]string {
	out := make(map[string]string)
	for _, v := range p.Static.Vars {
		out[v.XMLName.Local] = v.Value
	}
	return out
}

func parseRequest(t *testing.T, body []byte) parsedRequest {
	t.Helper()
	var p parsedRequest
	require.NoError(t, xml.Unmarshal(body, &p))
	return p
}

func TestCustomerExportRequest(t *testing.T) {
	body, err := CustomerExportRequest("CASTOLIN EUTECTIC INDIA")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(body), `<?xml version="1.0"?>`))
	p := parseRequest(t, body)
	assert.Equal(t, "Export Data", p.TallyRequest)
	assert.Equal(t, "List of Accounts", p.ReportName)
	assert.Equal(t, map[string]string{"SVCURRENTCOMPANY": "CASTOLIN EUTECTIC INDIA"}, p.vars())
}

func TestCustomerExportRequest_EscapesCompany(t *testing.T) {
	body, err := CustomerExportRequest("A & B <Traders>")
	require.NoError(t, err)

	assert.Contains(t, string(body), "A &amp; B &lt;Traders&gt;")
	assert.Equal(t, "A & B <Traders>", parseRequest(t, body).vars()["SVCURRENTCOMPANY"])
}

func TestStockItemExportRequest(t *testing.T) {
	body, err := StockItemExportRequest()
	require.NoError(t, err)

	p := parseRequest(t, body)
	assert.Equal(t, "List of Accounts", p.ReportName)
	assert.Equal(t, map[string]string{
		"MStockGroup":              "$$SysName:Allitems",
		"IsListofAccountsItemWise": "Yes",
		"AccountType":              "$$SysName:Stockitems",
		"IsItemWise":               "Yes",
		"SVEXPORTFORMAT":           "$$SysName:XML",
	}, p.vars())
}

func TestExportRequest(t *testing.T) {
	t.Run("company request for ping", func(t *testing.T) {
		body, err := CompanyRequest("Demo")
		require.NoError(t, err)
		assert.Equal(t, "Company", parseRequest(t, body).ReportName)
	})

	t.Run("dispatches by kind", func(t *testing.T) {
		customers, err := ExportRequest(KindCustomers, "Demo")
		require.NoError(t, err)
		assert.Contains(t, string(customers), "SVCURRENTCOMPANY")

		items, err := ExportRequest(KindItems, "Demo")
		require.NoError(t, err)
		assert.Contains(t, string(items), "IsItemWise")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := ExportRequest(Kind("vouchers"), "Demo")
		assert.Error(t, err)
	})
}
