// ABOUTME: Row types for clients, equipment, orders, invoices, contracts, maintenance, tickets
// ABOUTME: Dataset bundles rows for seeding any backend in foreign-key order

package store

import "time"

// Client is a customer organization; every query is scoped to one.
type Client struct {
	ID         int64
	Name       string
	ClientCode string
	Address    string
}

// User is a person who chats on behalf of one or more clients.
type User struct {
	ID    int64
	Email string
	Name  string
}

// UserClient links a user to a client; one link per user is primary.
type UserClient struct {
	UserID    int64
	ClientID  int64
	IsPrimary bool
}

// Equipment is an installed device owned by a client.
type Equipment struct {
	ID           int64
	ClientID     int64
	ModelName    string
	SerialNumber string
	Category     string
	Status       string
}

// Order is a purchase with optional tracking and ETA.
type Order struct {
	ID               int64
	ClientID         int64
	Status           string // pending, confirmed, shipped, delivered
	TrackingNumber   string // empty when not yet assigned
	OrderDate        time.Time
	ExpectedDelivery *time.Time
}

// Invoice is a billed amount.
type Invoice struct {
	ID          int64
	ClientID    int64
	Amount      float64
	Currency    string // defaults to USD when empty
	Status      string // pending, paid, overdue
	InvoiceDate time.Time
	DueDate     *time.Time
}

// Warranty covers one piece of equipment.
type Warranty struct {
	ID          int64
	EquipmentID int64
	StartDate   time.Time
	EndDate     time.Time
	Coverage    string
	Status      string // active, expired
}

// AMCContract is an annual maintenance contract for one piece of equipment.
type AMCContract struct {
	ID          int64
	EquipmentID int64
	StartDate   time.Time
	EndDate     time.Time
	SLA         string
	Status      string // active, expired
	Cost        float64
}

// Maintenance is a scheduled service visit.
type Maintenance struct {
	ID            int64
	EquipmentID   int64
	ScheduledDate time.Time
	Status        string // scheduled, in_progress, completed
	Notes         string
}

// Ticket is a complaint or support request.
type Ticket struct {
	ID          int64
	ClientID    int64
	UserID      int64
	Subject     string
	Description string
	Status      string // open, in_progress, resolved, closed
	Priority    string // low, medium, high, critical
	CreatedAt   time.Time
}

// ChatLog records one exchange for compliance auditing.
type ChatLog struct {
	ID          int64
	UserID      int64
	ClientID    int64
	Timestamp   time.Time
	UserMessage string
	AIResponse  string
	Intent      string
	DataSource  string
	RequestID   string
}

// Dataset is a bundle of rows in foreign-key order.
type Dataset struct {
	Clients      []Client
	Users        []User
	UserClients  []UserClient
	Equipment    []Equipment
	Orders       []Order
	Invoices     []Invoice
	Warranties   []Warranty
	AMCContracts []AMCContract
	Maintenance  []Maintenance
	Tickets      []Ticket
}
