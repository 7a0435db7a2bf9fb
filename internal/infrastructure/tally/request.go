package tally

import (
	"encoding/xml"
	"fmt"
)

const (
	reportListOfAccounts = "List of Accounts"
	reportCompany        = "Company"
)

// StaticVariable is one entry of STATICVARIABLES; Tally keys them by element name
type StaticVariable struct {
	Name  string
	Value string
}

// StaticVariables marshals as <STATICVARIABLES><Name>Value</Name>...</STATICVARIABLES>
type StaticVariables []StaticVariable

// MarshalXML implements xml.Marshaler
func (v StaticVariables) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = xml.StartElement{Name: xml.Name{Local: "STATICVARIABLES"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, sv := range v {
		if err := e.EncodeElement(sv.Value, xml.StartElement{Name: xml.Name{Local: sv.Name}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

type exportEnvelope struct {
	XMLName      xml.Name        `xml:"ENVELOPE"`
	TallyRequest string          `xml:"HEADER>TALLYREQUEST"`
	ReportName   string          `xml:"BODY>EXPORTDATA>REQUESTDESC>REPORTNAME"`
	Static       StaticVariables `xml:"BODY>EXPORTDATA>REQUESTDESC>STATICVARIABLES"`
}

// BuildExportRequest renders an "Export Data" request for the report
func BuildExportRequest(report string, vars StaticVariables) ([]byte, error) {
	body, err := xml.MarshalIndent(exportEnvelope{
		TallyRequest: "Export Data",
		ReportName:   report,
		Static:       vars,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("build export request: %w", err)
	}
	return append([]byte(`<?xml version="1.0"?>`+"\n"), body...), nil
}

// CustomerExportRequest asks for the company's list of accounts (ledgers)
func CustomerExportRequest(company string) ([]byte, error) {
	return BuildExportRequest(reportListOfAccounts, StaticVariables{
		{Name: "SVCURRENTCOMPANY", Value: company},
	})
}

// StockItemExportRequest asks for the item-wise list of accounts
func StockItemExportRequest() ([]byte, error) {
	return BuildExportRequest(reportListOfAccounts, StaticVariables{
		{Name: "MStockGroup", Value: "$$SysName:Allitems"},
		{Name: "IsListofAccountsItemWise", Value: "Yes"},
		{Name: "AccountType", Value: "$$SysName:Stockitems"},
		{Name: "IsItemWise", Value: "Yes"},
		{Name: "SVEXPORTFORMAT", Value: "$$SysName:XML"},
	})
}

// CompanyRequest is the lightweight request used to test connectivity
func CompanyRequest(company string) ([]byte, error) {
	return BuildExportRequest(reportCompany, StaticVariables{
		{Name: "SVCURRENTCOMPANY", Value: company},
	})
}

// ExportRequest returns the request body for a kind
func ExportRequest(kind Kind, company string) ([]byte, error) {
	switch kind {
	case KindCustomers:
		return CustomerExportRequest(company)
	case KindItems:
		return StockItemExportRequest()
	}
	return nil, fmt.Errorf("unknown export kind %q", kind)
}
