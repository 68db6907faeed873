// internal/models/application.go
package models

import "time"

// ApplicationStatus is the review status of a stored application.
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusAccepted    ApplicationStatus = "accepted"
	StatusRejected    ApplicationStatus = "rejected"
	StatusWaitlisted  ApplicationStatus = "waitlisted"
)

// AllStatuses lists every valid status in workflow order.
var AllStatuses = []ApplicationStatus{
	StatusPending,
	StatusUnderReview,
	StatusAccepted,
	StatusRejected,
	StatusWaitlisted,
}

func (s ApplicationStatus) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// ApplicationStage is the coarse progress marker. Only "submitted" is set by intake.
type ApplicationStage string

const StageSubmitted ApplicationStage = "submitted"

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ApplicationData is the flat record handed over by the form client.
type ApplicationData struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	DateOfBirth    string `json:"dateOfBirth"`
	Gender         string `json:"gender"`
	Grade          string `json:"grade"`
	ParentName     string `json:"parentName"`
	ParentEmail    string `json:"parentEmail"`
	ParentPhone    string `json:"parentPhone"`
	Relationship   string `json:"relationship"`
	Address        string `json:"address"`
	EmergencyName  string `json:"emergencyName"`
	EmergencyPhone string `json:"emergencyPhone"`
	SpecialNeeds   string `json:"specialNeeds,omitempty"`
	MedicalInfo    string `json:"medicalInfo,omitempty"`
	PreviousSchool string `json:"previousSchool,omitempty"`
}

// FormFields lists the record keys in form order; the first twelve are required.
var FormFields = []string{
	"firstName", "lastName", "dateOfBirth", "gender", "grade",
	"parentName", "parentEmail", "parentPhone", "relationship", "address",
	"emergencyName", "emergencyPhone",
	"specialNeeds", "medicalInfo", "previousSchool",
}

// RequiredFormFields are the keys the form client must always send.
var RequiredFormFields = FormFields[:12]

// ApplicationDataFromMap reads the known keys of a flat record. Missing keys
// become empty strings and unknown keys are ignored.
func ApplicationDataFromMap(m map[string]string) ApplicationData {
	return ApplicationData{
		FirstName:      m["firstName"],
		LastName:       m["lastName"],
		DateOfBirth:    m["dateOfBirth"],
		Gender:         m["gender"],
		Grade:          m["grade"],
		ParentName:     m["parentName"],
		ParentEmail:    m["parentEmail"],
		ParentPhone:    m["parentPhone"],
		Relationship:   m["relationship"],
		Address:        m["address"],
		EmergencyName:  m["emergencyName"],
		EmergencyPhone: m["emergencyPhone"],
		SpecialNeeds:   m["specialNeeds"],
		MedicalInfo:    m["medicalInfo"],
		PreviousSchool: m["previousSchool"],
	}
}

// ToMap returns the record as audit payload; optional fields are omitted when blank.
func (d ApplicationData) ToMap() map[string]interface{} {
	out := map[string]interface{}{
		"firstName":      d.FirstName,
		"lastName":       d.LastName,
		"dateOfBirth":    d.DateOfBirth,
		"gender":         d.Gender,
		"grade":          d.Grade,
		"parentName":     d.ParentName,
		"parentEmail":    d.ParentEmail,
		"parentPhone":    d.ParentPhone,
		"relationship":   d.Relationship,
		"address":        d.Address,
		"emergencyName":  d.EmergencyName,
		"emergencyPhone": d.EmergencyPhone,
	}
	if d.SpecialNeeds != "" {
		out["specialNeeds"] = d.SpecialNeeds
	}
	if d.MedicalInfo != "" {
		out["medicalInfo"] = d.MedicalInfo
	}
	if d.PreviousSchool != "" {
		out["previousSchool"] = d.PreviousSchool
	}
	return out
}

// StudentName is "<first> <last>".
func (d ApplicationData) StudentName() string {
	return d.FirstName + " " + d.LastName
}

type Document struct {
	Name       string    `json:"name"`
	URL        string    `json:"url,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type Note struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author"`
}

// ApplicationRecord is a persisted application.
type ApplicationRecord struct {
	ID string `json:"id"`
	ApplicationData
	Status     ApplicationStatus `json:"status"`
	Stage      ApplicationStage  `json:"stage"`
	Priority   Priority          `json:"priority"`
	AssignedTo *string           `json:"assignedTo"`
	Documents  []Document        `json:"documents"`
	Notes      []Note            `json:"notes"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Clone returns a deep copy so callers cannot alias stored slices.
func (r ApplicationRecord) Clone() ApplicationRecord {
	out := r
	if r.AssignedTo != nil {
		v := *r.AssignedTo
		out.AssignedTo = &v
	}
	out.Documents = append(make([]Document, 0, len(r.Documents)), r.Documents...)
	out.Notes = append(make([]Note, 0, len(r.Notes)), r.Notes...)
	return out
}
