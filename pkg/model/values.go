package model

// Values holds the user-entered contents of the contact form. The zero value is
// the initial, empty form.
type Values struct {
	InquiryType string   `json:"inquiryType"`
	Service     []string `json:"service"`
	Company     string   `json:"company"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Address     string   `json:"address"`
	Content     string   `json:"content"`
}

// Clone returns a copy that shares no memory with v. Service is never nil in
// the result so snapshots serialise as [] rather than null.
func (v Values) Clone() Values {
	out := v
	out.Service = append(make([]string, 0, len(v.Service)), v.Service...)
	return out
}

// Text returns the single-valued field called name.
func (v Values) Text(name string) (string, bool) {
	switch name {
	case FieldInquiryType:
		return v.InquiryType, true
	case FieldCompany:
		return v.Company, true
	case FieldName:
		return v.Name, true
	case FieldEmail:
		return v.Email, true
	case FieldAddress:
		return v.Address, true
	case FieldContent:
		return v.Content, true
	default:
		return "", false
	}
}

// SetText assigns a single-valued field. It reports false for unknown or
// multi-valued names.
func (v *Values) SetText(name, value string) bool {
	switch name {
	case FieldInquiryType:
		v.InquiryType = value
	case FieldCompany:
		v.Company = value
	case FieldName:
		v.Name = value
	case FieldEmail:
		v.Email = value
	case FieldAddress:
		v.Address = value
	case FieldContent:
		v.Content = value
	default:
		return false
	}
	return true
}

// Selection returns the multi-valued field called name.
func (v Values) Selection(name string) ([]string, bool) {
	if name == FieldService {
		return v.Service, true
	}
	return nil, false
}

// SetSelection assigns a multi-valued field.
func (v *Values) SetSelection(name string, values []string) bool {
	if name != FieldService {
		return false
	}
	v.Service = append([]string(nil), values...)
	return true
}

// IsZero reports whether every field still holds its initial value.
func (v Values) IsZero() bool {
	return v.InquiryType == "" &&
		len(v.Service) == 0 &&
		v.Company == "" &&
		v.Name == "" &&
		v.Email == "" &&
		v.Address == "" &&
		v.Content == ""
}
