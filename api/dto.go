/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

ENVELOPE:
  Every response is wrapped in {success, message?, data, count?, total?,
  totalPages?, currentPage?}. List endpoints fill the paging fields; single
  records carry only success and data.

DATES:
  Responses use RFC3339. Requests accept RFC3339 or YYYY-MM-DD.

MONEY:
  Decimal amounts serialize as quoted strings to avoid float rounding in
  clients.

VALIDATION:
  Validation is done in the domain types, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Shared response/paging helpers
  - crm/: Domain types these map onto
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/insurance-crm/crm"
)

// =============================================================================
// RESPONSE ENVELOPE
// =============================================================================

type envelope struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	Data        any    `json:"data,omitempty"`
	Count       *int   `json:"count,omitempty"`
	Total       *int   `json:"total,omitempty"`
	TotalPages  *int   `json:"totalPages,omitempty"`
	CurrentPage *int   `json:"currentPage,omitempty"`
}

// =============================================================================
// CLIENTS
// =============================================================================

type ClientDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone"`
	AlternatePhone string          `json:"alternatePhone,omitempty"`
	DateOfBirth    *time.Time      `json:"dateOfBirth,omitempty"`
	Address        crm.Address     `json:"address"`
	ClientType     string          `json:"clientType"`
	Priority       string          `json:"priority"`
	Tags           []string        `json:"tags,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	IsNewProspect  bool            `json:"isNewProspect"`
	AssignedAgent  string          `json:"assignedAgent,omitempty"`
	Status         string          `json:"status"`
	TotalPolicies  int             `json:"totalPolicies"`
	TotalPremium   decimal.Decimal `json:"totalPremium"`
	TotalMaturity  decimal.Decimal `json:"totalMaturity"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ClientRequest is the create/update body. Rollup fields are absent on
// purpose: they are derived, never accepted.
type ClientRequest struct {
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	AlternatePhone string      `json:"alternatePhone"`
	DateOfBirth    string      `json:"dateOfBirth"`
	Address        crm.Address `json:"address"`
	ClientType     string      `json:"clientType"`
	Priority       string      `json:"priority"`
	Tags           []string    `json:"tags"`
	Notes          string      `json:"notes"`
	AssignedAgent  string      `json:"assignedAgent"`
	Status         string      `json:"status"`
}

func toClientDTO(c *crm.Client) ClientDTO {
	return ClientDTO{
		ID:             string(c.ID),
		Name:           c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		AlternatePhone: c.AlternatePhone,
		DateOfBirth:    c.DateOfBirth,
		Address:        c.Address,
		ClientType:     string(c.ClientType),
		Priority:       string(c.Priority),
		Tags:           c.Tags,
		Notes:          c.Notes,
		IsNewProspect:  c.IsNewProspect,
		AssignedAgent:  string(c.AssignedAgent),
		Status:         string(c.Status),
		TotalPolicies:  c.TotalPolicies,
		TotalPremium:   c.TotalPremium,
		TotalMaturity:  c.TotalMaturity,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toClientDTOs(clients []crm.Client) []ClientDTO {
	out := make([]ClientDTO, len(clients))
	for i := range clients {
		out[i] = toClientDTO(&clients[i])
	}
	return out
}

func (req *ClientRequest) toClient() (*crm.Client, error) {
	dob, err := parseDatePtr(req.DateOfBirth)
	if err != nil {
		return nil, &crm.ValidationError{Field: "dateOfBirth", Reason: "invalid date"}
	}
	return &crm.Client{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		AlternatePhone: req.AlternatePhone,
		DateOfBirth:    dob,
		Address:        req.Address,
		ClientType:     crm.ClientType(req.ClientType),
		Priority:       crm.Priority(req.Priority),
		Tags:           req.Tags,
		Notes:          req.Notes,
		AssignedAgent:  crm.AgentID(req.AssignedAgent),
		Status:         crm.ClientStatus(req.Status),
	}, nil
}

// =============================================================================
// POLICIES
// =============================================================================

type PolicyDTO struct {
	ID               string          `json:"id"`
	ClientID         string          `json:"client"`
	PolicyNumber     string          `json:"policyNumber"`
	PolicyType       string          `json:"policyType"`
	Company          string          `json:"company"`
	PlanName         string          `json:"planName"`
	PremiumAmount    decimal.Decimal `json:"premiumAmount"`
	PremiumFrequency string          `json:"premiumFrequency"`
	SumAssured       decimal.Decimal `json:"sumAssured"`
	PolicyTermYears  int             `json:"policyTerm"`
	StartDate        time.Time       `json:"startDate"`
	MaturityDate     time.Time       `json:"maturityDate"`
	RenewalDate      *time.Time      `json:"renewalDate,omitempty"`
	NextPremiumDue   *time.Time      `json:"nextPremiumDue,omitempty"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"paymentStatus"`
	Nominees         []crm.Nominee   `json:"nominees,omitempty"`
	AssignedAgent    string          `json:"assignedAgent,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	DaysUntilRenewal *int            `json:"daysUntilRenewal,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type PolicyRequest struct {
	ClientID         string        `json:"client"`
	PolicyNumber     string        `json:"policyNumber"`
	PolicyType       string        `json:"policyType"`
	Company          string        `json:"company"`
	PlanName         string        `json:"planName"`
	PremiumAmount    string        `json:"premiumAmount"`
	PremiumFrequency string        `json:"premiumFrequency"`
	SumAssured       string        `json:"sumAssured"`
	PolicyTermYears  int           `json:"policyTerm"`
	StartDate        string        `json:"startDate"`
	MaturityDate     string        `json:"maturityDate"`
	RenewalDate      string        `json:"renewalDate"`
	NextPremiumDue   string        `json:"nextPremiumDue"`
	Status           string        `json:"status"`
	PaymentStatus    string        `json:"paymentStatus"`
	Nominees         []crm.Nominee `json:"nominees"`
	AssignedAgent    string        `json:"assignedAgent"`
	Notes            string        `json:"notes"`
}

func toPolicyDTO(p *crm.Policy, now time.Time) PolicyDTO {
	dto := PolicyDTO{
		ID:               string(p.ID),
		ClientID:         string(p.ClientID),
		PolicyNumber:     p.PolicyNumber,
		PolicyType:       string(p.PolicyType),
		Company:          string(p.Company),
		PlanName:         p.PlanName,
		PremiumAmount:    p.PremiumAmount,
		PremiumFrequency: string(p.PremiumFrequency),
		SumAssured:       p.SumAssured,
		PolicyTermYears:  p.PolicyTermYears,
		StartDate:        p.StartDate,
		MaturityDate:     p.MaturityDate,
		RenewalDate:      p.RenewalDate,
		NextPremiumDue:   p.NextPremiumDue,
		Status:           string(p.Status),
		PaymentStatus:    string(p.PaymentStatus),
		Nominees:         p.Nominees,
		AssignedAgent:    string(p.AssignedAgent),
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if days, ok := p.DaysUntilRenewal(now); ok {
		dto.DaysUntilRenewal = &days
	}
	return dto
}

func toPolicyDTOs(policies []crm.Policy, now time.Time) []PolicyDTO {
	out := make([]PolicyDTO, len(policies))
	for i := range policies {
		out[i] = toPolicyDTO(&policies[i], now)
	}
	return out
}

func (req *PolicyRequest) toPolicy() (*crm.Policy, error) {
	p := &crm.Policy{
		ClientID:         crm.ClientID(req.ClientID),
		PolicyNumber:     req.PolicyNumber,
		PolicyType:       crm.PolicyType(req.PolicyType),
		Company:          crm.Company(req.Company),
		PlanName:         req.PlanName,
		PremiumFrequency: crm.PremiumFrequency(req.PremiumFrequency),
		PolicyTermYears:  req.PolicyTermYears,
		Status:           crm.PolicyStatus(req.Status),
		PaymentStatus:    crm.PaymentStatus(req.PaymentStatus),
		Nominees:         req.Nominees,
		AssignedAgent:    crm.AgentID(req.AssignedAgent),
		Notes:            req.Notes,
	}

	var err error
	if p.PremiumAmount, err = parseAmount(req.PremiumAmount); err != nil {
		return nil, &crm.ValidationError{Field: "premiumAmount", Reason: "invalid amount"}
	}
	if p.SumAssured, err = parseAmount(req.SumAssured); err != nil {
		return nil, &crm.ValidationError{Field: "sumAssured", Reason: "invalid amount"}
	}
	if p.StartDate, err = parseDate(req.StartDate); err != nil {
		return nil, &crm.ValidationError{Field: "startDate", Reason: "invalid date"}
	}
	if p.MaturityDate, err = parseDate(req.MaturityDate); err != nil {
		return nil, &crm.ValidationError{Field: "maturityDate", Reason: "invalid date"}
	}
	if p.RenewalDate, err = parseDatePtr(req.RenewalDate); err != nil {
		return nil, &crm.ValidationError{Field: "renewalDate", Reason: "invalid date"}
	}
	if p.NextPremiumDue, err = parseDatePtr(req.NextPremiumDue); err != nil {
		return nil, &crm.ValidationError{Field: "nextPremiumDue", Reason: "invalid date"}
	}
	return p, nil
}

// =============================================================================
// CLAIMS
// =============================================================================

type ClaimDTO struct {
	ID              string             `json:"id"`
	ClientID        string             `json:"client"`
	PolicyID        string             `json:"policy"`
	ClaimNumber     string             `json:"claimNumber"`
	ClaimType       string             `json:"claimType"`
	ClaimAmount     decimal.Decimal    `json:"claimAmount"`
	ApprovedAmount  *decimal.Decimal   `json:"approvedAmount,omitempty"`
	ClaimDate       time.Time          `json:"claimDate"`
	IncidentDate    time.Time          `json:"incidentDate"`
	Status          string             `json:"status"`
	Priority        string             `json:"priority"`
	AssignedTo      string             `json:"assignedTo,omitempty"`
	Description     string             `json:"description,omitempty"`
	StatusHistory   []crm.StatusChange `json:"statusHistory"`
	RejectionReason string             `json:"rejectionReason,omitempty"`
	ShortfallReason string             `json:"shortfallReason,omitempty"`
	SettlementDate  *time.Time         `json:"settlementDate,omitempty"`
	PaymentMode     string             `json:"paymentMode,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	ProcessingDays  int                `json:"processingDays"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

type ClaimRequest struct {
	ClientID        string `json:"client"`
	PolicyID        string `json:"policy"`
	ClaimNumber     string `json:"claimNumber"`
	ClaimType       string `json:"claimType"`
	ClaimAmount     string `json:"claimAmount"`
	ApprovedAmount  string `json:"approvedAmount"`
	ClaimDate       string `json:"claimDate"`
	IncidentDate    string `json:"incidentDate"`
	Status          string `json:"status"`
	Priority        string `json:"priority"`
	AssignedTo      string `json:"assignedTo"`
	Description     string `json:"description"`
	RejectionReason string `json:"rejectionReason"`
	ShortfallReason string `json:"shortfallReason"`
	PaymentMode     string `json:"paymentMode"`
	Notes           string `json:"notes"`
}

// UpdateClaimStatusRequest drives the PATCH status endpoint.
type UpdateClaimStatusRequest struct {
	Status    string `json:"status"`
	Note      string `json:"note"`
	UpdatedBy string `json:"updatedBy"`
}

func toClaimDTO(c *crm.Claim, now time.Time) ClaimDTO {
	history := c.StatusHistory
	if history == nil {
		history = []crm.StatusChange{}
	}
	return ClaimDTO{
		ID:              string(c.ID),
		ClientID:        string(c.ClientID),
		PolicyID:        string(c.PolicyID),
		ClaimNumber:     c.ClaimNumber,
		ClaimType:       string(c.ClaimType),
		ClaimAmount:     c.ClaimAmount,
		ApprovedAmount:  c.ApprovedAmount,
		ClaimDate:       c.ClaimDate,
		IncidentDate:    c.IncidentDate,
		Status:          string(c.Status),
		Priority:        string(c.Priority),
		AssignedTo:      string(c.AssignedTo),
		Description:     c.Description,
		StatusHistory:   history,
		RejectionReason: c.RejectionReason,
		ShortfallReason: c.ShortfallReason,
		SettlementDate:  c.SettlementDate,
		PaymentMode:     string(c.PaymentMode),
		Notes:           c.Notes,
		ProcessingDays:  c.ProcessingDays(now),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toClaimDTOs(claims []crm.Claim, now time.Time) []ClaimDTO {
	out := make([]ClaimDTO, len(claims))
	for i := range claims {
		out[i] = toClaimDTO(&claims[i], now)
	}
	return out
}

func (req *ClaimRequest) toClaim() (*crm.Claim, error) {
	c := &crm.Claim{
		ClientID:        crm.ClientID(req.ClientID),
		PolicyID:        crm.PolicyID(req.PolicyID),
		ClaimNumber:     req.ClaimNumber,
		ClaimType:       crm.ClaimType(req.ClaimType),
		Status:          crm.ClaimStatus(req.Status),
		Priority:        crm.Priority(req.Priority),
		AssignedTo:      crm.AgentID(req.AssignedTo),
		Description:     req.Description,
		RejectionReason: req.RejectionReason,
		ShortfallReason: req.ShortfallReason,
		PaymentMode:     crm.PaymentMode(req.PaymentMode),
		Notes:           req.Notes,
	}

	var err error
	if c.ClaimAmount, err = parseAmount(req.ClaimAmount); err != nil {
		return nil, &crm.ValidationError{Field: "claimAmount", Reason: "invalid amount"}
	}
	if req.ApprovedAmount != "" {
		amount, err := decimal.NewFromString(req.ApprovedAmount)
		if err != nil {
			return nil, &crm.ValidationError{Field: "approvedAmount", Reason: "invalid amount"}
		}
		c.ApprovedAmount = &amount
	}
	if c.ClaimDate, err = parseDate(req.ClaimDate); err != nil {
		return nil, &crm.ValidationError{Field: "claimDate", Reason: "invalid date"}
	}
	if c.IncidentDate, err = parseDate(req.IncidentDate); err != nil {
		return nil, &crm.ValidationError{Field: "incidentDate", Reason: "invalid date"}
	}
	return c, nil
}

// =============================================================================
// REMINDERS
// =============================================================================

type ReminderDTO struct {
	ID            string           `json:"id"`
	ClientID      string           `json:"client"`
	PolicyID      string           `json:"policy,omitempty"`
	ReminderType  string           `json:"reminderType"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	DueDate       time.Time        `json:"dueDate"`
	Priority      string           `json:"priority"`
	Status        string           `json:"status"`
	Frequency     string           `json:"frequency"`
	AssignedAgent string           `json:"assignedAgent,omitempty"`
	CompletedAt   *time.Time       `json:"completedAt,omitempty"`
	CompletedBy   string           `json:"completedBy,omitempty"`
	SnoozeUntil   *time.Time       `json:"snoozeUntil,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	DaysUntilDue  int              `json:"daysUntilDue"`
	IsOverdue     bool             `json:"isOverdue"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type ReminderRequest struct {
	ClientID      string `json:"client"`
	PolicyID      string `json:"policy"`
	ReminderType  string `json:"reminderType"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	DueDate       string `json:"dueDate"`
	Priority      string `json:"priority"`
	Status        string `json:"status"`
	Frequency     string `json:"frequency"`
	AssignedAgent string `json:"assignedAgent"`
	Amount        string `json:"amount"`
	Notes         string `json:"notes"`
}

// SnoozeRequest carries the snooze duration; zero means one day.
type SnoozeRequest struct {
	Days int `json:"days"`
}

func toReminderDTO(r *crm.Reminder, now time.Time) ReminderDTO {
	return ReminderDTO{
		ID:            string(r.ID),
		ClientID:      string(r.ClientID),
		PolicyID:      string(r.PolicyID),
		ReminderType:  string(r.ReminderType),
		Title:         r.Title,
		Description:   r.Description,
		DueDate:       r.DueDate,
		Priority:      string(r.Priority),
		Status:        string(r.Status),
		Frequency:     string(r.Frequency),
		AssignedAgent: string(r.AssignedAgent),
		CompletedAt:   r.CompletedAt,
		CompletedBy:   string(r.CompletedBy),
		SnoozeUntil:   r.SnoozeUntil,
		Amount:        r.Amount,
		Notes:         r.Notes,
		DaysUntilDue:  r.DaysUntilDue(now),
		IsOverdue:     r.IsOverdue(now),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toReminderDTOs(reminders []crm.Reminder, now time.Time) []ReminderDTO {
	out := make([]ReminderDTO, len(reminders))
	for i := range reminders {
		out[i] = toReminderDTO(&reminders[i], now)
	}
	return out
}

func (req *ReminderRequest) toReminder() (*crm.Reminder, error) {
	r := &crm.Reminder{
		ClientID:      crm.ClientID(req.ClientID),
		PolicyID:      crm.PolicyID(req.PolicyID),
		ReminderType:  crm.ReminderType(req.ReminderType),
		Title:         req.Title,
		Description:   req.Description,
		Priority:      crm.Priority(req.Priority),
		Status:        crm.ReminderStatus(req.Status),
		Frequency:     crm.Frequency(req.Frequency),
		AssignedAgent: crm.AgentID(req.AssignedAgent),
		Notes:         req.Notes,
	}

	var err error
	if r.DueDate, err = parseDate(req.DueDate); err != nil {
		return nil, &crm.ValidationError{Field: "dueDate", Reason: "invalid date"}
	}
	if req.Amount != "" {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return nil, &crm.ValidationError{Field: "amount", Reason: "invalid amount"}
		}
		r.Amount = &amount
	}
	return r, nil
}

// =============================================================================
// TARGETS
// =============================================================================

type TargetDTO struct {
	ID                    string          `json:"id"`
	AgentID               string          `json:"agent"`
	TargetPeriod          string          `json:"targetPeriod"`
	StartDate             time.Time       `json:"startDate"`
	EndDate               time.Time       `json:"endDate"`
	ProductType           string          `json:"productType"`
	TargetAmount          decimal.Decimal `json:"targetAmount"`
	AchievedAmount        decimal.Decimal `json:"achievedAmount"`
	TargetPolicies        int             `json:"targetPolicies"`
	AchievedPolicies      int             `json:"achievedPolicies"`
	Status                string          `json:"status"`
	AchievementPercentage float64         `json:"achievementPercentage"`
	Shortfall             decimal.Decimal `json:"shortfall"`
	DaysRemaining         int             `json:"daysRemaining"`
	IsAchieved            bool            `json:"isAchieved"`
	Bonus                 *crm.Bonus      `json:"bonus,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

type TargetRequest struct {
	AgentID          string     `json:"agent"`
	TargetPeriod     string     `json:"targetPeriod"`
	StartDate        string     `json:"startDate"`
	EndDate          string     `json:"endDate"`
	ProductType      string     `json:"productType"`
	TargetAmount     string     `json:"targetAmount"`
	AchievedAmount   string     `json:"achievedAmount"`
	TargetPolicies   int        `json:"targetPolicies"`
	AchievedPolicies int        `json:"achievedPolicies"`
	Status           string     `json:"status"`
	Bonus            *crm.Bonus `json:"bonus"`
	Notes            string     `json:"notes"`
}

func toTargetDTO(t *crm.Target, now time.Time) TargetDTO {
	return TargetDTO{
		ID:                    string(t.ID),
		AgentID:               string(t.AgentID),
		TargetPeriod:          string(t.TargetPeriod),
		StartDate:             t.StartDate,
		EndDate:               t.EndDate,
		ProductType:           string(t.ProductType),
		TargetAmount:          t.TargetAmount,
		AchievedAmount:        t.AchievedAmount,
		TargetPolicies:        t.TargetPolicies,
		AchievedPolicies:      t.AchievedPolicies,
		Status:                string(t.Status),
		AchievementPercentage: t.AchievementPercentage,
		Shortfall:             t.Shortfall(),
		DaysRemaining:         t.DaysRemaining(now),
		IsAchieved:            t.IsAchieved(),
		Bonus:                 t.Bonus,
		Notes:                 t.Notes,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
	}
}

func toTargetDTOs(targets []crm.Target, now time.Time) []TargetDTO {
	out := make([]TargetDTO, len(targets))
	for i := range targets {
		out[i] = toTargetDTO(&targets[i], now)
	}
	return out
}

func (req *TargetRequest) toTarget() (*crm.Target, error) {
	t := &crm.Target{
		AgentID:          crm.AgentID(req.AgentID),
		TargetPeriod:     crm.TargetPeriod(req.TargetPeriod),
		ProductType:      crm.ProductType(req.ProductType),
		TargetPolicies:   req.TargetPolicies,
		AchievedPolicies: req.AchievedPolicies,
		Status:           crm.TargetStatus(req.Status),
		Bonus:            req.Bonus,
		Notes:            req.Notes,
	}

	var err error
	if t.StartDate, err = parseDate(req.StartDate); err != nil {
		return nil, &crm.ValidationError{Field: "startDate", Reason: "invalid date"}
	}
	if t.EndDate, err = parseDate(req.EndDate); err != nil {
		return nil, &crm.ValidationError{Field: "endDate", Reason: "invalid date"}
	}
	if t.TargetAmount, err = parseAmount(req.TargetAmount); err != nil {
		return nil, &crm.ValidationError{Field: "targetAmount", Reason: "invalid amount"}
	}
	if t.AchievedAmount, err = parseAmount(req.AchievedAmount); err != nil {
		return nil, &crm.ValidationError{Field: "achievedAmount", Reason: "invalid amount"}
	}
	return t, nil
}

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Location  string    `json:"location,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Bio      string `json:"bio"`
}

func toUserDTO(u *crm.User) UserDTO {
	return UserDTO{
		ID:        string(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Location:  u.Location,
		Bio:       u.Bio,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// parseDate accepts RFC3339 or plain YYYY-MM-DD. Empty input is the zero
// time; required dates are enforced by domain validation, not here.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func parseDatePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseAmount treats empty as zero.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
