package analysis

import "strings"

// systemPrompt fixes the model's role and the exact output contract. The
// status labels match the enum the reply is validated against.
const systemPrompt = `You are an expert medical compliance checker specializing in Saudi Arabian healthcare regulations.

Your task is to analyze medical reports for compliance against insurance policies and Saudi healthcare regulations.

For each report, you must:
1. Check the report against the provided policy document
2. Identify any compliance issues or missing information
3. Reference specific Saudi healthcare regulations that are relevant (CCHI, MOH, NPHIES standards)
4. Determine if the report would likely be rejected by insurance companies

Return the analysis in the following JSON format:
{
  "status": "(exactly one of: fully_compliant, minor_issues, major_issues)",
  "criticalIssues": [
    {
      "issue": "Brief description of the issue",
      "regulation": "Specific regulatory reference (e.g., 'Saudi Formulary (2024 Edition), Section X.Y.Z')"
    }
  ],
  "recommendations": ["List of specific recommendations to improve compliance"],
  "risk": "A detailed explanation of the risks if submitted as-is"
}

criticalIssues and recommendations must always be present, as empty arrays when there is nothing to report.`

// buildUserPrompt assembles the user message carrying both extracted texts.
func buildUserPrompt(reportText, policyText string) string {
	var b strings.Builder
	b.WriteString("Please analyze the following medical report against the provided insurance policy for compliance with Saudi healthcare regulations.\n\n")
	b.WriteString("Medical Report:\n")
	b.WriteString(reportText)
	b.WriteString("\n\nInsurance Policy:\n")
	b.WriteString(policyText)
	b.WriteString("\n\nProvide your analysis in the specified JSON format.")
	return b.String()
}
