package sheet

// Field is a canonical column concept.
type Field string

const (
	FieldEmployeeCode Field = "employee_code"
	FieldEmployeeName Field = "employee_name"
	FieldDepartment   Field = "department"
	FieldCompany      Field = "company"
	FieldDesignation  Field = "designation"
	FieldTeam         Field = "team"
	FieldCategory     Field = "category"

	// Attendance
	FieldDate         Field = "date"
	FieldShift        Field = "shift"
	FieldInTime       Field = "in_time"
	FieldOutTime      Field = "out_time"
	FieldDuration     Field = "duration"
	FieldLateBy       Field = "late_by"
	FieldEarlyBy      Field = "early_by"
	FieldStatus       Field = "status"
	FieldPunchRecords Field = "punch_records"
	FieldOvertime     Field = "overtime"

	// Personnel
	FieldFatherName             Field = "father_name"
	FieldDOB                    Field = "dob"
	FieldDOJ                    Field = "doj"
	FieldDOR                    Field = "dor"
	FieldDOE                    Field = "doe"
	FieldActiveStatus           Field = "active_status"
	FieldGender                 Field = "gender"
	FieldMaritalStatus          Field = "marital_status"
	FieldAddress                Field = "address"
	FieldContactNumber          Field = "contact_number"
	FieldEmergencyContact       Field = "emergency_contact"
	FieldEmergencyContactPerson Field = "emergency_contact_person"
	FieldBloodGroup             Field = "blood_group"
	FieldAadhar                 Field = "aadhar"
	FieldPAN                    Field = "pan"
	FieldMailID                 Field = "mail_id"
	FieldGrade                  Field = "grade"
	FieldCTC                    Field = "ctc"
	FieldBondApplicable         Field = "bond_applicable"
)

// AliasEntry lists the accepted headers of one field. The first alias is the
// representative header written to templates.
type AliasEntry struct {
	Field   Field
	Aliases []string
}

// AliasTable is an ordered mapping from canonical field to header aliases.
type AliasTable []AliasEntry

// Aliases returns the accepted headers of field, or nil when the table does
// not know it.
func (t AliasTable) Aliases(field Field) []string {
	for _, e := range t {
		if e.Field == field {
			return e.Aliases
		}
	}
	return nil
}

// Headers returns the representative header of every field, in table order.
func (t AliasTable) Headers() []string {
	headers := make([]string, 0, len(t))
	for _, e := range t {
		if len(e.Aliases) > 0 {
			headers = append(headers, e.Aliases[0])
		}
	}
	return headers
}

// Serial numbers ("S.No") are deliberately absent from the identifier aliases:
// personnel sheets carry both a serial column and a code column.
var identifierAliases = []string{"Emp Code", "Employee Code", "EmpCode", "CardNo", "Enroll ID", "ID"}

// AttendanceAliases drives attendance log uploads.
var AttendanceAliases = AliasTable{
	{FieldDate, []string{"Date", "Att Date", "Work Date"}},
	{FieldEmployeeCode, append([]string{"Employee Code"}, without(identifierAliases, "Employee Code")...)},
	{FieldEmployeeName, []string{"Employee Name", "Emp Name", "Name"}},
	{FieldCompany, []string{"Company", "Org", "Organization", "Firm"}},
	{FieldDepartment, []string{"Department", "Dep", "Dept", "Division"}},
	{FieldCategory, []string{"Category"}},
	{FieldDesignation, []string{"Deginatio Grade", "Designation", "Designatio Grade", "Desig", "Role"}},
	{FieldTeam, []string{"Team"}},
	{FieldShift, []string{"Shift", "Work Shift"}},
	{FieldInTime, []string{"In Time", "Login", "InTime"}},
	{FieldOutTime, []string{"Out Time", "Logout", "OutTime"}},
	{FieldDuration, []string{"Duration", "Work Hrs", "Total Hrs"}},
	{FieldLateBy, []string{"Late By", "Late"}},
	{FieldEarlyBy, []string{"Early By", "Early"}},
	{FieldStatus, []string{"Status", "Att Status", "Attendance"}},
	{FieldPunchRecords, []string{"Punch Rec", "Punch Records", "Log"}},
	{FieldOvertime, []string{"Overtime", "OT", "Extra Hrs"}},
}

// PersonnelAliases drives personnel detail uploads.
var PersonnelAliases = AliasTable{
	{FieldEmployeeCode, identifierAliases},
	{FieldEmployeeName, []string{"Emp Name", "Employee Name", "Name", "FullName"}},
	{FieldFatherName, []string{"Father Name", "Father N", "FatherName", "Parents"}},
	{FieldDesignation, []string{"Designation", "Desig", "Designatio Grade", "Role"}},
	{FieldDepartment, []string{"Department", "Dep", "Dept", "Division"}},
	{FieldCompany, []string{"Company", "Org", "Organization", "Firm"}},
	{FieldDOB, []string{"D.O.B (DD/MM/YY)", "DOB", "Date of Birth", "Birth Date"}},
	{FieldDOJ, []string{"D.O.J (DD/MM/YY)", "DOJ", "Date of Joining", "Joining Date"}},
	{FieldDOR, []string{"D.O.R (DD/MM/YY)", "DOR", "Date of Resignation", "Resignation Date"}},
	{FieldDOE, []string{"D.O.E (DD/MM/YY)", "DOE", "Date of Exit", "Exit Date"}},
	{FieldActiveStatus, []string{"Active / Inactive", "Active / Inac", "Status", "Employment Status"}},
	{FieldGender, []string{"Gender", "Gen", "Sex"}},
	{FieldMaritalStatus, []string{"Marital status", "Marital"}},
	{FieldAddress, []string{"Address", "Add", "Location"}},
	{FieldContactNumber, []string{"Contact Number", "Phone", "Mobile", "Cell"}},
	{FieldEmergencyContact, []string{"Emergency contact number", "Emergency No", "SOS Number"}},
	{FieldEmergencyContactPerson, []string{"Emergency contact person", "Emergency Person", "Relative Name"}},
	{FieldBloodGroup, []string{"Blood Group", "Blood", "BG"}},
	{FieldAadhar, []string{"Aadhar Card Number", "Aadhar", "UID", "Adhar"}},
	{FieldPAN, []string{"Pan Card Number", "PAN", "PAN NO"}},
	{FieldMailID, []string{"Mail - Id", "Email", "Mail ID", "Gmail"}},
	{FieldTeam, []string{"Team"}},
	{FieldCategory, []string{"Category"}},
	{FieldGrade, []string{"Grade", "Pay Grade"}},
	{FieldCTC, []string{"CTC", "Salary"}},
	{FieldBondApplicable, []string{"Bond Applicable", "Bond"}},
}

func without(list []string, drop string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != drop {
			out = append(out, s)
		}
	}
	return out
}
