package models

// Equipment is an inspected vessel. Inspection dates are stored as YYYY-MM-DD strings.
type Equipment struct {
	EquipID            uint    `gorm:"column:EquipID;primaryKey;autoIncrement" json:"EquipID"`
	EquipDescription   string  `gorm:"column:EquipDescription" json:"EquipDescription"`
	EquipType          string  `gorm:"column:EquipType" json:"EquipType"`
	TagNo              string  `gorm:"column:TagNo" json:"TagNo"`
	PlantName          string  `gorm:"column:PlantName" json:"PlantName"`
	DOSH               string  `gorm:"column:DOSH" json:"DOSH"`
	Photo              *string `gorm:"column:Photo" json:"Photo"`
	LastInspectionDate *string `gorm:"column:Last_Inspection_Date;type:varchar(10)" json:"Last_Inspection_Date"`
	NextInspectionDate *string `gorm:"column:Next_Inspection_Date;type:varchar(10)" json:"Next_Inspection_Date"`
}

// TableName specifies the table name for Equipment model
func (Equipment) TableName() string {
	return "Equipment"
}

// EquipmentPatch carries the optional fields of an Equipment update
type EquipmentPatch struct {
	EquipDescription   *string `json:"EquipDescription"`
	EquipType          *string `json:"EquipType"`
	TagNo              *string `json:"TagNo"`
	PlantName          *string `json:"PlantName"`
	DOSH               *string `json:"DOSH"`
	Photo              *string `json:"Photo"`
	LastInspectionDate *string `json:"Last_Inspection_Date"`
	NextInspectionDate *string `json:"Next_Inspection_Date"`
}

// Apply merges the set fields into e
func (p EquipmentPatch) Apply(e *Equipment) {
	setString(&e.EquipDescription, p.EquipDescription)
	setString(&e.EquipType, p.EquipType)
	setString(&e.TagNo, p.TagNo)
	setString(&e.PlantName, p.PlantName)
	setString(&e.DOSH, p.DOSH)
	if p.Photo != nil {
		e.Photo = p.Photo
	}
	if p.LastInspectionDate != nil {
		e.LastInspectionDate = p.LastInspectionDate
	}
	if p.NextInspectionDate != nil {
		e.NextInspectionDate = p.NextInspectionDate
	}
}

// DefectStats counts categorised findings for one piece of equipment
type DefectStats struct {
	Name           string `json:"name"`
	Total          int    `json:"total"`
	Corrosion      int    `json:"corrosion"`
	Dents          int    `json:"dents"`
	ScratchMark    int    `json:"scratch_mark"`
	WeldingDefects int    `json:"welding_defects"`
}
