package session

import "time"

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderUser    Sender = "user"
	SenderSupport Sender = "support"
	SenderAI      Sender = "ai"
)

// Valid reports whether s is one of the known senders.
func (s Sender) Valid() bool {
	switch s {
	case SenderUser, SenderSupport, SenderAI:
		return true
	}
	return false
}

// PaymentStatus is the outcome recorded on a payment entry.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
)

// User is the aggregate root: payments and chats are embedded in it.
// JSON field names follow the browser-storage layout so existing data decodes as-is.
type User struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Email              string          `json:"email"`
	PasswordHash       string          `json:"passwordHash,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	ProfilePicture     string          `json:"profilePicture,omitempty"`
	ProblemDescription string          `json:"problemDescription,omitempty"`
	PaymentHistory     []PaymentRecord `json:"paymentHistory,omitempty"`
	ChatHistory        []ChatRecord    `json:"chatHistory,omitempty"`
}

// PaymentRecord is an append-only ledger entry.
type PaymentRecord struct {
	ID         string        `json:"id"`
	DoctorID   string        `json:"doctorId"`
	DoctorName string        `json:"doctorName"`
	Amount     float64       `json:"amount"`
	Date       time.Time     `json:"date"`
	Status     PaymentStatus `json:"status"`
	// Booked is set once the payment has been spent on an appointment.
	Booked bool `json:"booked,omitempty"`
}

// ChatRecord is the thread between a user and one counselor. At most one per DoctorID.
type ChatRecord struct {
	DoctorID     string    `json:"doctorId"`
	DoctorName   string    `json:"doctorName"`
	Messages     []Message `json:"messages"`
	LastActivity time.Time `json:"lastActivity"`
}

// Message is one entry in a ChatRecord, kept in append order.
type Message struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Sender        Sender    `json:"sender"`
	Timestamp     time.Time `json:"timestamp"`
	SupporterName string    `json:"supporterName,omitempty"`
}

// ScheduledAppointment is the single pending consultation. Date is YYYY-MM-DD and
// Time is HH:MM, both in the store's local zone.
type ScheduledAppointment struct {
	DoctorID    string    `json:"doctorId"`
	DoctorName  string    `json:"doctorName"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Amount      float64   `json:"amount"`
	ScheduledAt time.Time `json:"scheduledAt"`
	PaymentID   string    `json:"paymentId,omitempty"`
}

const appointmentLayout = "2006-01-02 15:04"

// StartsAt parses Date and Time in loc.
func (a ScheduledAppointment) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(appointmentLayout, a.Date+" "+a.Time, loc)
}

// UserPatch lists the profile fields a caller may change. Nil fields are left alone.
type UserPatch struct {
	Name               *string `json:"name,omitempty"`
	Email              *string `json:"email,omitempty"`
	ProfilePicture     *string `json:"profilePicture,omitempty"`
	ProblemDescription *string `json:"problemDescription,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.ProfilePicture == nil && p.ProblemDescription == nil
}

// Apply merges the set fields into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = *p.ProfilePicture
	}
	if p.ProblemDescription != nil {
		u.ProblemDescription = *p.ProblemDescription
	}
}

// sessionPointer is what current_user:<session> holds.
type sessionPointer struct {
	UserID string `json:"user_id"`
}
