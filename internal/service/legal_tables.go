package service

import "strings"

// Tablas fijas de ayuda para redaccion. Las claves van en minusculas.

var clauseHints = map[string]string{
	"rent agreement":           "Draft a comprehensive residential/commercial Rent Agreement covering: • Title and Date  • Parties and Contact Details  • Property Description  • Lease Term and Renewal • Rent Amount, Due Date, Mode of Payment  • Security Deposit  • Maintenance & Utilities • Permitted Use and Restrictions  • Repairs & Alterations  • Subletting/Assignment Rules • Compliance with Laws  • Landlord’s Inspection/Entry Rights  • Indemnity & Liability • Default, Remedies, and Termination  • Force Majeure  • Dispute Resolution & Governing Law • Notices  • Entire Agreement  • Severability  • Waiver  • Counterparts and Signature Blocks.",
	"non disclosure agreement": "Create a robust NDA with: • Title and Effective Date  • Parties  • Definitions of Confidential Information • Confidentiality Obligations  • Exclusions  • Permitted Disclosures • Duration/Survival  • Return or Destruction of Materials • IP Ownership & No License Granted  • Remedies & Injunctive Relief • Governing Law & Jurisdiction  • Notices  • Entire Agreement  • Amendments • Counterparts and Signature Blocks.",
	"service agreement":        "Prepare a Service Agreement detailing: • Title and Date  • Parties  • Scope of Services & Deliverables  • Service Levels/SLAs • Fees, Payment Terms & Taxes  • Expense Reimbursements • Term & Termination  • Warranties & Disclaimers  • Limitation of Liability • Indemnification  • Confidentiality & Data Protection  • IP Ownership and License • Non-Solicitation  • Force Majeure  • Governing Law & Dispute Resolution • Notices  • Entire Agreement  • Severability  • Counterparts and Signatures.",
	"employment offer letter":  "Generate an Employment Offer Letter including: • Position & Start Date  • Job Duties & Reporting Line  • Compensation (salary/bonuses) • Benefits  • Probationary Period (if any)  • Working Hours & Location • Leave Policies  • Confidentiality & IP Ownership • Non-Compete/Non-Solicit (if applicable)  • At-Will or Termination Terms • Reference to Company Policies  • Governing Law  • Acceptance and Signature Blocks.",
	"power of attorney":        "Draft a Power of Attorney with: • Parties  • Appointment of Attorney  • Powers Granted (general/specific) • Limitations  • Duration & Validity  • Revocation Mechanism • Governing Law  • Acknowledgments  • Witness/Notary Details  • Signatures.",
	"marriage certificate":     "Create a formal Marriage Certificate template that captures: • Title  • Date and Place of Marriage  • Full Names, Ages, Addresses, and Nationalities of Spouses • Parents’/Guardians’ Names (if required)  • Declaration of Marriage  • Witness Details • Registrar/Marriage Officer Certification  • Registration Number  • Official Seals and Signatures.",
	"sale deed":                "Prepare a Property Sale Deed covering: • Title  • Date  • Details of Seller and Buyer • Property Description with Boundaries  • Sale Consideration and Payment Schedule • Representations & Warranties  • Encumbrance/No-Encumbrance Clause • Possession & Handover Terms  • Indemnity  • Stamp Duty & Registration • Governing Law  • Signatures of Parties & Witnesses.",
	"affidavit":                "Generate a sworn Affidavit including: • Title  • Deponent’s Full Details (Name, Age, Address, ID) • Statement of Facts or Declaration  • Verification Clause • Date & Place of Execution  • Signature of Deponent • Attestation by Notary/Oath Commissioner and Witness Details.",
	"loan agreement":           "Draft a Loan Agreement containing: • Title  • Date  • Lender and Borrower Details  • Loan Amount & Disbursement Terms • Interest Rate & Repayment Schedule  • Prepayment & Late Payment Clauses • Security/Collateral (if any)  • Representations & Warranties • Covenants of Borrower  • Events of Default & Remedies • Governing Law & Dispute Resolution  • Notices  • Entire Agreement  • Signatures.",
	"partnership agreement":    "Create a Partnership Agreement that outlines: • Title  • Effective Date  • Names & Addresses of Partners • Nature of Business  • Capital Contributions  • Profit & Loss Sharing • Roles, Duties, and Decision-Making  • Admission or Withdrawal of Partners • Accounts & Audit  • Non-Compete & Confidentiality • Dispute Resolution  • Dissolution & Winding Up  • Governing Law • Amendments  • Notices  • Signatures and Witnesses.",
}

const genericClauseHint = "Include a professional structure with Title, Date, Parties, Definitions (if useful), Main Terms/Obligations, Consideration/Payment (if applicable), Representations and Warranties, Confidentiality (if applicable), IP (if applicable), Liability, Indemnity, Term and Termination, Governing Law and Dispute Resolution, Force Majeure, Notices, Entire Agreement, Amendments, Severability, Waiver (if applicable), Counterparts, and Signature blocks."

// ClauseHint devuelve la lista de secciones sugeridas para el tipo de documento.
func ClauseHint(docType string) string {
	if hint, ok := clauseHints[lookupKey(docType)]; ok {
		return hint
	}
	return genericClauseHint
}

const stampFallback = "Refer to state stamp schedule; commonly Rs 100 for standard agreements"

var stampBaseRates = map[string]string{
	"rent agreement":            "Rs 100 – Rs 500 (varies by state and rent amount)",
	"leave and license":         "Rs 100 – Rs 500 (state-specific)",
	"affidavit":                 "Rs 10 – Rs 50",
	"agreement":                 "Rs 100 (general agreements)",
	"non-disclosure agreement":  "Rs 100",
	"nda":                       "Rs 100",
	"service agreement":         "Rs 100",
	"employment offer letter":   "Usually no stamp paper; Rs 10 if notarized",
	"power of attorney":         "Rs 100 – Rs 500 (higher for special/commercial)",
	"sale deed":                 "Ad valorem based on consideration (state schedule)",
	"caste certificate":         "No stamp duty (government issued)",
	"affidavit-cum-declaration": "Rs 10 – Rs 50",
}

// stampStateOverlays pisa la tarifa base en los estados listados.
var stampStateOverlays = map[string]map[string]string{
	"maharashtra": {
		"rent agreement":           "Rs 100 (plus registration/cess as applicable)",
		"affidavit":                "Rs 100",
		"power of attorney":        "Rs 100 – Rs 500",
		"non-disclosure agreement": "Rs 100",
	},
	"delhi": {
		"rent agreement":           "Rs 50 – Rs 100",
		"affidavit":                "Rs 10",
		"non-disclosure agreement": "Rs 10 – Rs 50",
	},
	"karnataka": {
		"rent agreement": "Rs 20 – Rs 200",
		"affidavit":      "Rs 20",
	},
	"haryana": {
		"rent agreement": "Rs 50 – Rs 100",
		"affidavit":      "Rs 10",
	},
}

// StampDuty estima el valor del papel sellado. Es orientativo y nunca se valida.
func StampDuty(docType, state string) string {
	key := lookupKey(docType)
	if overlay, ok := stampStateOverlays[lookupKey(state)]; ok {
		if v, ok := overlay[key]; ok {
			return v
		}
	}
	if v, ok := stampBaseRates[key]; ok {
		return v
	}
	return stampFallback
}

func lookupKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
