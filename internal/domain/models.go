// internal/domain/models.go

package domain

import "time"

// MaxSubClients is the hard bound on sub-clients per registration.
const MaxSubClients = 3

// MeterDetails identifies one ABT meter and its communication hardware.
type MeterDetails struct {
	MeterNumber  string `json:"meterNumber" bson:"meter_number"`
	ModemNumber  string `json:"modemNumber" bson:"modem_number"`
	MobileNumber string `json:"mobileNumber" bson:"mobile_number"`
	SimNumber    string `json:"simNumber" bson:"sim_number"`
}

// Electrical holds the plant parameters shared by main and sub clients.
type Electrical struct {
	VoltageLevel      string `json:"voltageLevel" bson:"voltage_level"`
	CtptSrNo          string `json:"ctptSrNo" bson:"ctpt_sr_no"`
	CtRatio           string `json:"ctRatio" bson:"ct_ratio"`
	PtRatio           string `json:"ptRatio" bson:"pt_ratio"`
	Mf                string `json:"mf" bson:"mf"`
	AcCapacityKw      string `json:"acCapacityKw" bson:"ac_capacity_kw"`
	DcCapacityKwp     string `json:"dcCapacityKwp" bson:"dc_capacity_kwp"`
	DcAcRatio         string `json:"dcAcRatio" bson:"dc_ac_ratio"`
	NoOfModules       string `json:"noOfModules" bson:"no_of_modules"`
	NumbersOfInverter string `json:"numbersOfInverter" bson:"numbers_of_inverter"`
	SharingPercentage string `json:"sharingPercentage" bson:"sharing_percentage"`
}

// Contact holds the reachability fields of a client.
type Contact struct {
	ContactNo string `json:"contactNo" bson:"contact_no"`
	Email     string `json:"email" bson:"email"`
}

// MainClient is the single top-level generator of a registration.
type MainClient struct {
	Name          string       `json:"name" bson:"name"`
	SubTitle      string       `json:"subTitle" bson:"sub_title"`
	AbtMainMeter  MeterDetails `json:"abtMainMeter" bson:"abt_main_meter"`
	AbtCheckMeter MeterDetails `json:"abtCheckMeter" bson:"abt_check_meter"`

	Electrical `bson:",inline"`
	Contact    `bson:",inline"`
}

// SubClient is a secondary metering point under the main client.
type SubClient struct {
	Name          string       `json:"name" bson:"name"`
	DivisionName  string       `json:"divisionName" bson:"division_name"`
	ConsumerNo    string       `json:"consumerNo" bson:"consumer_no"`
	ModemSrNo     string       `json:"modemSrNo" bson:"modem_sr_no"`
	AbtMainMeter  MeterDetails `json:"abtMainMeter" bson:"abt_main_meter"`
	AbtCheckMeter MeterDetails `json:"abtCheckMeter" bson:"abt_check_meter"`

	Electrical `bson:",inline"`
	Contact    `bson:",inline"`

	InverterCapacity string `json:"inverterCapacity" bson:"inverter_capacity"`
	InverterMake     string `json:"inverterMake" bson:"inverter_make"`
	ModuleCapacity   string `json:"moduleCapacity" bson:"module_capacity"`
	ModuleMake       string `json:"moduleMake" bson:"module_make"`

	// PartClients is kept when HasPartClients is switched off.
	HasPartClients bool         `json:"hasPartClients" bson:"has_part_clients"`
	PartClients    []PartClient `json:"partClients" bson:"part_clients"`
}

// PartClient is a party sharing the metered output of a sub client.
type PartClient struct {
	PercentageSharing string `json:"percentageSharing" bson:"percentage_sharing"`
	DivisionName      string `json:"divisionName" bson:"division_name"`
	ConsumerNo        string `json:"consumerNo" bson:"consumer_no"`
}

// Tree is the full record hierarchy edited in one session.
type Tree struct {
	MainClient MainClient  `json:"mainClient" bson:"main_client"`
	SubClients []SubClient `json:"subClients" bson:"sub_clients"`
}

// Registration is a submitted snapshot of a session's tree.
type Registration struct {
	ID          string    `json:"id" bson:"_id"`
	SessionID   string    `json:"sessionId" bson:"session_id"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submitted_at"`
	Tree        `bson:",inline"`
}

func EmptyMeterDetails() MeterDetails {
	return MeterDetails{}
}

func EmptyMainClient() MainClient {
	return MainClient{
		AbtMainMeter:  EmptyMeterDetails(),
		AbtCheckMeter: EmptyMeterDetails(),
	}
}

// EmptySubClient returns a sub client with its own empty part-client list.
func EmptySubClient() SubClient {
	return SubClient{
		AbtMainMeter:  EmptyMeterDetails(),
		AbtCheckMeter: EmptyMeterDetails(),
		PartClients:   []PartClient{},
	}
}

func EmptyPartClient() PartClient {
	return PartClient{}
}

// EmptyTree returns a tree holding an empty main client and no sub clients.
func EmptyTree() Tree {
	return Tree{
		MainClient: EmptyMainClient(),
		SubClients: []SubClient{},
	}
}

// Clone returns a copy of the sub client that shares no slices with s.
func (s SubClient) Clone() SubClient {
	parts := make([]PartClient, len(s.PartClients))
	copy(parts, s.PartClients)
	s.PartClients = parts
	return s
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	subs := make([]SubClient, len(t.SubClients))
	for i, sub := range t.SubClients {
		subs[i] = sub.Clone()
	}
	t.SubClients = subs
	return t
}

type Stats struct {
	ActiveSessions  int     `json:"active_sessions"`
	SessionsCreated uint64  `json:"sessions_created"`
	EditsApplied    uint64  `json:"edits_applied"`
	EditsRejected   uint64  `json:"edits_rejected"`
	Submissions     uint64  `json:"submissions"`
	StoredCount     int64   `json:"stored_count"`
	BufferSize      int     `json:"buffer_size"`
	RejectionRate   float64 `json:"rejection_rate"`
	DatabaseType    string  `json:"database_type"`
}
