package mapper

import "solar_registration/internal/domain"

var meterFields = map[string]func(m *domain.MeterDetails, v string){
	"meterNumber":  func(m *domain.MeterDetails, v string) { m.MeterNumber = v },
	"modemNumber":  func(m *domain.MeterDetails, v string) { m.ModemNumber = v },
	"mobileNumber": func(m *domain.MeterDetails, v string) { m.MobileNumber = v },
	"simNumber":    func(m *domain.MeterDetails, v string) { m.SimNumber = v },
}

// MainClientSchema addresses every editable field of a MainClient.
var MainClientSchema = &Schema[domain.MainClient]{
	Record: "main client",
	Fields: merge(
		map[string]FieldSpec[domain.MainClient]{
			"name":     text(func(m *domain.MainClient) *string { return &m.Name }),
			"subTitle": text(func(m *domain.MainClient) *string { return &m.SubTitle }),
		},
		electricalFields(func(m *domain.MainClient) *domain.Electrical { return &m.Electrical }),
		contactFields(func(m *domain.MainClient) *domain.Contact { return &m.Contact }),
	),
	Groups: map[string]func(*domain.MainClient) *domain.MeterDetails{
		"abtMainMeter":  func(m *domain.MainClient) *domain.MeterDetails { return &m.AbtMainMeter },
		"abtCheckMeter": func(m *domain.MainClient) *domain.MeterDetails { return &m.AbtCheckMeter },
	},
}

// SubClientSchema addresses every editable field of a SubClient. The
// part-client list is structural and only changes through the editor.
var SubClientSchema = &Schema[domain.SubClient]{
	Record: "sub client",
	Fields: merge(
		map[string]FieldSpec[domain.SubClient]{
			"name":             text(func(s *domain.SubClient) *string { return &s.Name }),
			"divisionName":     text(func(s *domain.SubClient) *string { return &s.DivisionName }),
			"consumerNo":       text(func(s *domain.SubClient) *string { return &s.ConsumerNo }),
			"modemSrNo":        text(func(s *domain.SubClient) *string { return &s.ModemSrNo }),
			"inverterCapacity": text(func(s *domain.SubClient) *string { return &s.InverterCapacity }),
			"inverterMake":     text(func(s *domain.SubClient) *string { return &s.InverterMake }),
			"moduleCapacity":   text(func(s *domain.SubClient) *string { return &s.ModuleCapacity }),
			"moduleMake":       text(func(s *domain.SubClient) *string { return &s.ModuleMake }),
			"hasPartClients": {
				SetBool: func(s *domain.SubClient, v bool) { s.HasPartClients = v },
			},
		},
		electricalFields(func(s *domain.SubClient) *domain.Electrical { return &s.Electrical }),
		contactFields(func(s *domain.SubClient) *domain.Contact { return &s.Contact }),
	),
	Groups: map[string]func(*domain.SubClient) *domain.MeterDetails{
		"abtMainMeter":  func(s *domain.SubClient) *domain.MeterDetails { return &s.AbtMainMeter },
		"abtCheckMeter": func(s *domain.SubClient) *domain.MeterDetails { return &s.AbtCheckMeter },
	},
}

// PartClientSchema has no groups; every path is a single field name.
var PartClientSchema = &Schema[domain.PartClient]{
	Record: "part client",
	Fields: map[string]FieldSpec[domain.PartClient]{
		"percentageSharing": text(func(p *domain.PartClient) *string { return &p.PercentageSharing }),
		"divisionName":      text(func(p *domain.PartClient) *string { return &p.DivisionName }),
		"consumerNo":        text(func(p *domain.PartClient) *string { return &p.ConsumerNo }),
	},
}

func text[R any](field func(*R) *string) FieldSpec[R] {
	return FieldSpec[R]{SetString: func(rec *R, v string) { *field(rec) = v }}
}

func electricalFields[R any](get func(*R) *domain.Electrical) map[string]FieldSpec[R] {
	return map[string]FieldSpec[R]{
		"voltageLevel":      text(func(r *R) *string { return &get(r).VoltageLevel }),
		"ctptSrNo":          text(func(r *R) *string { return &get(r).CtptSrNo }),
		"ctRatio":           text(func(r *R) *string { return &get(r).CtRatio }),
		"ptRatio":           text(func(r *R) *string { return &get(r).PtRatio }),
		"mf":                text(func(r *R) *string { return &get(r).Mf }),
		"acCapacityKw":      text(func(r *R) *string { return &get(r).AcCapacityKw }),
		"dcCapacityKwp":     text(func(r *R) *string { return &get(r).DcCapacityKwp }),
		"dcAcRatio":         text(func(r *R) *string { return &get(r).DcAcRatio }),
		"noOfModules":       text(func(r *R) *string { return &get(r).NoOfModules }),
		"numbersOfInverter": text(func(r *R) *string { return &get(r).NumbersOfInverter }),
		"sharingPercentage": text(func(r *R) *string { return &get(r).SharingPercentage }),
	}
}

func contactFields[R any](get func(*R) *domain.Contact) map[string]FieldSpec[R] {
	return map[string]FieldSpec[R]{
		"contactNo": text(func(r *R) *string { return &get(r).ContactNo }),
		"email":     text(func(r *R) *string { return &get(r).Email }),
	}
}

func merge[R any](tables ...map[string]FieldSpec[R]) map[string]FieldSpec[R] {
	out := make(map[string]FieldSpec[R])
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}
