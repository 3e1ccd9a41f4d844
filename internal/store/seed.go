// ABOUTME: Demo dataset for first runs and tests: four hospitals, one admin user, sample rows
// ABOUTME: Dates are relative to the supplied clock so demo questions stay meaningful

package store

import "time"

// DemoUserID is the user id the demo dataset creates; it is linked to CITY001.
const DemoUserID int64 = 1

// DemoDataset returns sample rows dated relative to now.
func DemoDataset(now time.Time) *Dataset {
	now = now.UTC()
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }
	ptr := func(t time.Time) *time.Time { return &t }

	return &Dataset{
		Clients: []Client{
			{ID: 1, Name: "City General Hospital", ClientCode: "CITY001", Address: "123 Medical Plaza, Healthcare District, NY 10001"},
			{ID: 2, Name: "St. Mary's Medical Center", ClientCode: "MARY002", Address: "456 Health Avenue, Medical City, CA 90210"},
			{ID: 3, Name: "Community Health Clinic", ClientCode: "COMM003", Address: "789 Wellness Street, Care Town, TX 75001"},
			{ID: 4, Name: "Advanced Diagnostics Center", ClientCode: "DIAG004", Address: "321 Innovation Drive, Tech Med Park, MA 02101"},
		},
		Users: []User{
			{ID: DemoUserID, Email: "admin@cityhospital.com", Name: "City Admin"},
			{ID: 2, Email: "ops@stmarys.example", Name: "St. Mary's Ops"},
		},
		UserClients: []UserClient{
			{UserID: DemoUserID, ClientID: 1, IsPrimary: true},
			{UserID: DemoUserID, ClientID: 4, IsPrimary: false},
			{UserID: 2, ClientID: 2, IsPrimary: true},
		},
		Equipment: []Equipment{
			{ID: 1, ClientID: 1, ModelName: "Ultrasound Machine Pro 5000", SerialNumber: "USM-2023-001", Category: "ultrasound", Status: "active"},
			{ID: 2, ClientID: 1, ModelName: "Digital X-Ray System DXR-3000", SerialNumber: "XRY-2023-002", Category: "xray", Status: "active"},
			{ID: 3, ClientID: 1, ModelName: "Patient Monitor Elite 600", SerialNumber: "MON-2023-003", Category: "monitoring", Status: "active"},
			{ID: 4, ClientID: 2, ModelName: "CT Scanner Vision 128", SerialNumber: "CTS-2022-010", Category: "ct", Status: "active"},
		},
		Orders: []Order{
			{ID: 1, ClientID: 1, Status: "delivered", TrackingNumber: "TRK-2023-1000", OrderDate: day(-30), ExpectedDelivery: ptr(day(-10))},
			{ID: 2, ClientID: 1, Status: "shipped", TrackingNumber: "TRK-2024-2001", OrderDate: day(-5), ExpectedDelivery: ptr(day(3))},
			{ID: 3, ClientID: 1, Status: "pending", OrderDate: day(-1)},
			{ID: 4, ClientID: 2, Status: "confirmed", TrackingNumber: "TRK-2024-3001", OrderDate: day(-2), ExpectedDelivery: ptr(day(12))},
		},
		Invoices: []Invoice{
			{ID: 1, ClientID: 1, Amount: 125000, Currency: "USD", Status: "pending", InvoiceDate: day(-25), DueDate: ptr(day(5))},
			{ID: 2, ClientID: 1, Amount: 15000, Currency: "USD", Status: "paid", InvoiceDate: day(-60), DueDate: ptr(day(-30))},
			{ID: 3, ClientID: 1, Amount: 4200.5, Currency: "USD", Status: "overdue", InvoiceDate: day(-45), DueDate: ptr(day(-15))},
			{ID: 4, ClientID: 2, Amount: 98000, Currency: "EUR", Status: "pending", InvoiceDate: day(-3), DueDate: ptr(day(27))},
		},
		Warranties: []Warranty{
			{ID: 1, EquipmentID: 1, StartDate: day(-365), EndDate: day(365), Coverage: "Full parts and labor coverage for 2 years", Status: "active"},
			{ID: 2, EquipmentID: 3, StartDate: day(-400), EndDate: day(-35), Coverage: "Parts only, 1 year", Status: "expired"},
			{ID: 3, EquipmentID: 4, StartDate: day(-100), EndDate: day(630), Coverage: "Full coverage", Status: "active"},
		},
		AMCContracts: []AMCContract{
			{ID: 1, EquipmentID: 2, StartDate: day(-180), EndDate: day(185), SLA: "Preventive maintenance every 3 months with emergency support", Status: "active", Cost: 15000},
		},
		Maintenance: []Maintenance{
			{ID: 1, EquipmentID: 2, ScheduledDate: day(14), Status: "scheduled", Notes: "Quarterly preventive maintenance"},
			{ID: 2, EquipmentID: 1, ScheduledDate: day(40), Status: "scheduled", Notes: "Probe calibration"},
			{ID: 3, EquipmentID: 3, ScheduledDate: day(-20), Status: "completed", Notes: "Firmware update"},
			{ID: 4, EquipmentID: 4, ScheduledDate: day(7), Status: "scheduled"},
		},
		Tickets: []Ticket{
			{ID: 1, ClientID: 1, UserID: DemoUserID, Subject: "Monitor display flickers", Description: "Patient monitor display flickers intermittently in ICU bay 3.", Status: "open", Priority: "high", CreatedAt: day(-4)},
			{ID: 2, ClientID: 1, UserID: DemoUserID, Subject: "X-ray calibration drift", Description: "Image quality degraded after last week's power outage.", Status: "in_progress", Priority: "medium", CreatedAt: day(-9)},
			{ID: 3, ClientID: 1, UserID: DemoUserID, Subject: "Ultrasound gel dispenser", Description: "Dispenser replaced.", Status: "resolved", Priority: "low", CreatedAt: day(-50)},
		},
	}
}
