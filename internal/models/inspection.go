package models

import (
	"time"
)

// InspectionStatus is the lifecycle state of an Inspection
type InspectionStatus string

const (
	StatusPending   InspectionStatus = "Pending"
	StatusCompleted InspectionStatus = "Completed"
	StatusApproved  InspectionStatus = "Approved"
)

// DateLayout is the layout of ReportDate and the equipment inspection dates
const DateLayout = "2006-01-02"

// Inspection is a single inspection of one piece of equipment
type Inspection struct {
	InspectionID        uint             `gorm:"column:InspectionID;primaryKey;autoIncrement" json:"InspectionID"`
	EquipID             uint             `gorm:"column:EquipID;index" json:"EquipID"`
	UserIDInspector     uint             `gorm:"column:UserID_Inspector;index" json:"UserID_Inspector"`
	ReportNo            string           `gorm:"column:ReportNo" json:"ReportNo"`
	ReportDate          string           `gorm:"column:ReportDate;type:varchar(10)" json:"ReportDate"`
	Findings            *string          `gorm:"column:Findings;type:text" json:"Findings"`
	NDTs                *string          `gorm:"column:NDTs;type:text" json:"NDTs"`
	Recommendations     *string          `gorm:"column:Recommendations;type:text" json:"Recommendations"`
	PostFinalInspection *string          `gorm:"column:Post_Final_Inspection;type:text" json:"Post_Final_Inspection"`
	Status              InspectionStatus `gorm:"column:Status;type:varchar(16);default:'Pending'" json:"Status"`

	// Relations
	Equipment *Equipment `gorm:"foreignKey:EquipID;references:EquipID" json:"Equipment,omitempty"`
	Inspector *Inspector `gorm:"foreignKey:UserIDInspector;references:UserID" json:"Inspector,omitempty"`
	Report    *Report    `gorm:"foreignKey:InspectionID;references:InspectionID" json:"Report,omitempty"`
}

// TableName specifies the table name for Inspection model
func (Inspection) TableName() string {
	return "Inspection"
}

// InspectionPatch is a field mask for the generic inspection update.
// Absent fields are left untouched; the nullable text fields accept an explicit
// null to clear them.
type InspectionPatch struct {
	EquipID             *uint      `json:"EquipID"`
	UserIDInspector     *uint      `json:"UserID_Inspector"`
	ReportNo            *string    `json:"ReportNo"`
	ReportDate          *string    `json:"ReportDate"`
	Findings            NullString `json:"Findings"`
	NDTs                NullString `json:"NDTs"`
	Recommendations     NullString `json:"Recommendations"`
	PostFinalInspection NullString `json:"Post_Final_Inspection"`
	Status              *string    `json:"Status"`
}

// Columns returns the columns the patch writes, keyed by column name
func (p InspectionPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.EquipID != nil {
		cols["EquipID"] = *p.EquipID
	}
	if p.UserIDInspector != nil {
		cols["UserID_Inspector"] = *p.UserIDInspector
	}
	if p.ReportNo != nil {
		cols["ReportNo"] = *p.ReportNo
	}
	if p.ReportDate != nil {
		cols["ReportDate"] = *p.ReportDate
	}
	nullable(cols, "Findings", p.Findings)
	nullable(cols, "NDTs", p.NDTs)
	nullable(cols, "Recommendations", p.Recommendations)
	nullable(cols, "Post_Final_Inspection", p.PostFinalInspection)
	if p.Status != nil {
		cols["Status"] = *p.Status
	}
	return cols
}

func nullable(cols map[string]interface{}, column string, v NullString) {
	if v.Set {
		cols[column] = v.column()
	}
}

// Report holds the document artifacts and review comment of an inspection (one per inspection)
type Report struct {
	ReportID         uint      `gorm:"column:ReportID;primaryKey;autoIncrement" json:"ReportID"`
	InspectionID     uint      `gorm:"column:InspectionID;uniqueIndex;not null" json:"InspectionID"`
	WordFile         *string   `gorm:"column:WordFile" json:"WordFile"`
	PdfFile          *string   `gorm:"column:PdfFile" json:"PdfFile"`
	ApprovedWordFile *string   `gorm:"column:ApprovedWordFile" json:"ApprovedWordFile"`
	ApprovedPdfFile  *string   `gorm:"column:ApprovedPdfFile" json:"ApprovedPdfFile"`
	UserID           *uint     `gorm:"column:UserID" json:"UserID"`
	Comment          *string   `gorm:"column:Comment;type:text" json:"Comment"`
	CreatedAt        time.Time `gorm:"column:CreatedAt" json:"CreatedAt"`

	Inspection *Inspection `gorm:"foreignKey:InspectionID;references:InspectionID" json:"Inspection,omitempty"`
}

// TableName specifies the table name for Report model
func (Report) TableName() string {
	return "Report"
}

// ReportPatch carries the optional fields of a Report update
type ReportPatch struct {
	WordFile NullString `json:"WordFile"`
	PdfFile  NullString `json:"PdfFile"`
	UserID   *uint      `json:"UserID"`
	Comment  NullString `json:"Comment"`
}

// Columns returns the columns the patch writes, keyed by column name
func (p ReportPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	nullable(cols, "WordFile", p.WordFile)
	nullable(cols, "PdfFile", p.PdfFile)
	if p.UserID != nil {
		cols["UserID"] = *p.UserID
	}
	nullable(cols, "Comment", p.Comment)
	return cols
}

// Team groups inspectors that share an inspection
type Team struct {
	TeamID       uint `gorm:"column:TeamID;primaryKey;autoIncrement" json:"TeamID"`
	InspectionID uint `gorm:"column:InspectionID;index" json:"InspectionID"`
}

// TableName specifies the table name for Team model
func (Team) TableName() string {
	return "Team"
}

// InspectorTeam is a team membership
type InspectorTeam struct {
	TeamID uint `gorm:"column:TeamID;primaryKey;autoIncrement:false" json:"TeamID"`
	UserID uint `gorm:"column:UserID;primaryKey;autoIncrement:false" json:"UserID"`

	Inspector *Inspector `gorm:"foreignKey:UserID;references:UserID" json:"Inspector,omitempty"`
}

// TableName specifies the table name for InspectorTeam model
func (InspectorTeam) TableName() string {
	return "Inspector_Team"
}

// InspectionStats is the dashboard summary of inspection counts
type InspectionStats struct {
	TotalInspections int64  `json:"total_inspections"`
	PendingReports   int64  `json:"pending_reports"`
	CompletedReports int64  `json:"completed_reports"`
	ActiveInspectors *int64 `json:"active_inspectors,omitempty"`
}
