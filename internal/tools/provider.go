package tools

import (
	"fhirmcp/internal/config"
	"fhirmcp/internal/fhir"
	"fhirmcp/internal/igcontext"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Provider owns the FHIR clients and session state behind every tool and
// registers the tool set on an MCP server.
//
// Two clients exist because QuestionnaireResponse transformation is routed
// to a separately configured Matchbox server; everything else talks to the
// primary FHIR endpoint.
type Provider struct {
	fhir          *fhir.Client
	matchbox      *fhir.Client
	guides        *igcontext.Store
	defaultFormat string
}

// NewProvider wires the clients and the ImplementationGuide context store
// from the given configuration.
func NewProvider(cfg config.Config) *Provider {
	return &Provider{
		fhir:          fhir.NewClient(cfg.FHIR.BaseURL, cfg.FHIR.Timeout()),
		matchbox:      fhir.NewClient(cfg.Matchbox.BaseURL, cfg.Matchbox.Timeout()),
		guides:        igcontext.NewStore(),
		defaultFormat: cfg.Serve.DefaultFormat,
	}
}

// registration couples one tool definition with its handler.
type registration struct {
	tool    mcp.Tool
	handler server.ToolHandlerFunc
}

// Register adds every FHIR tool to the MCP server.
func (p *Provider) Register(s *server.MCPServer) {
	for _, reg := range p.toolSet() {
		s.AddTool(reg.tool, reg.handler)
	}
}

// Tools returns the tool definitions without handlers, for catalog output.
func (p *Provider) Tools() []mcp.Tool {
	regs := p.toolSet()
	tools := make([]mcp.Tool, 0, len(regs))
	for _, reg := range regs {
		tools = append(tools, reg.tool)
	}
	return tools
}

// toolSet declares the complete tool catalog. Each deployment variant of
// the original servers carried a drifted copy of this list; here it is
// the single source of truth.
func (p *Provider) toolSet() []registration {
	return []registration{
		// PlanDefinition workflow
		{
			tool: mcp.NewTool("fhir_list_plan_definitions",
				mcp.WithDescription("List available PlanDefinition resources from the FHIR server with optional filters"),
				mcp.WithString("status", mcp.Description("Filter by status (draft, active, retired, unknown)")),
				mcp.WithString("title", mcp.Description("Filter by title (partial match)")),
				mcp.WithString("count", mcp.Description("Maximum number of results to return (default 100)")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json")),
			),
			handler: p.handleListPlanDefinitions,
		},
		{
			tool: mcp.NewTool("fhir_get_plan_definition",
				mcp.WithDescription("Retrieve a specific PlanDefinition by ID with full details including actions"),
				mcp.WithString("plan_definition_id", mcp.Required(), mcp.Description("The ID of the PlanDefinition to retrieve")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json")),
			),
			handler: p.handleGetPlanDefinition,
		},
		{
			tool: mcp.NewTool("fhir_apply_plan_definition",
				mcp.WithDescription("Apply a PlanDefinition to generate a CarePlan for a specific subject"),
				mcp.WithString("plan_definition_id", mcp.Required(), mcp.Description("The ID of the PlanDefinition to apply")),
				mcp.WithString("subject", mcp.Required(), mcp.Description("Reference to the subject (e.g., Patient/123; a bare ID is treated as a Patient)")),
				mcp.WithString("encounter", mcp.Description("Reference to the encounter (e.g., Encounter/456)")),
				mcp.WithString("practitioner", mcp.Description("Reference to the practitioner (e.g., Practitioner/789)")),
				mcp.WithString("organization", mcp.Description("Reference to the organization (e.g., Organization/abc)")),
			),
			handler: p.handleApplyPlanDefinition,
		},
		{
			tool: mcp.NewTool("fhir_get_plan_definition_data_requirements",
				mcp.WithDescription("Get data requirements for a PlanDefinition to understand what patient data is needed"),
				mcp.WithString("plan_definition_id", mcp.Required(), mcp.Description("The ID of the PlanDefinition")),
			),
			handler: p.handleDataRequirements,
		},

		// Generic resource access
		{
			tool: mcp.NewTool("fhir_get_resource",
				mcp.WithDescription("Retrieve a FHIR resource by type and ID"),
				mcp.WithString("resource_type", mcp.Required(), mcp.Description("The FHIR resource type (e.g., Patient, Observation)")),
				mcp.WithString("resource_id", mcp.Required(), mcp.Description("The ID of the resource to retrieve")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json (default json)")),
			),
			handler: p.handleGetResource,
		},
		{
			tool: mcp.NewTool("fhir_search_resources",
				mcp.WithDescription("Search for FHIR resources of a specific type with optional search parameters"),
				mcp.WithString("resource_type", mcp.Required(), mcp.Description("The FHIR resource type to search (e.g., Patient, Observation)")),
				mcp.WithString("search_params", mcp.Description("URL-encoded search parameters (e.g., 'name=John&birthdate=1990-01-01')")),
				mcp.WithString("count", mcp.Description("Maximum number of results to return (default 50)")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json")),
			),
			handler: p.handleSearchResources,
		},
		{
			tool: mcp.NewTool("fhir_create_resource",
				mcp.WithDescription("Create a new FHIR resource using raw JSON. Supports any valid FHIR R4 resource type"),
				mcp.WithString("resource_json", mcp.Required(), mcp.Description("The complete FHIR resource as a JSON string")),
			),
			handler: p.handleCreateResource,
		},
		{
			tool: mcp.NewTool("fhir_update_resource",
				mcp.WithDescription("Update an existing FHIR resource using raw JSON"),
				mcp.WithString("resource_type", mcp.Required(), mcp.Description("The FHIR resource type (e.g., Patient, Observation)")),
				mcp.WithString("resource_id", mcp.Required(), mcp.Description("The ID of the resource to update")),
				mcp.WithString("resource_json", mcp.Required(), mcp.Description("The complete FHIR resource as a JSON string")),
			),
			handler: p.handleUpdateResource,
		},
		{
			tool: mcp.NewTool("fhir_create_patient",
				mcp.WithDescription("Create a new Patient resource from individual fields"),
				mcp.WithString("family_name", mcp.Required(), mcp.Description("The patient's family (last) name")),
				mcp.WithString("given_name", mcp.Description("The patient's given (first) name")),
				mcp.WithString("birth_date", mcp.Description("Birth date (e.g., 1990-01-01)")),
				mcp.WithString("gender", mcp.Description("Administrative gender (male, female, other, unknown)")),
				mcp.WithString("identifier_value", mcp.Description("An identifier value for the patient (e.g., MRN)")),
				mcp.WithString("identifier_system", mcp.Description("The identifier system URL")),
			),
			handler: p.handleCreatePatient,
		},
		{
			tool: mcp.NewTool("fhir_create_immunization",
				mcp.WithDescription("Create a new Immunization record for a patient from individual fields"),
				mcp.WithString("patient_id", mcp.Required(), mcp.Description("The ID of the patient")),
				mcp.WithString("vaccine_code", mcp.Required(), mcp.Description("The vaccine code (e.g., a CVX code)")),
				mcp.WithString("vaccine_system", mcp.Description("The vaccine code system (default CVX)")),
				mcp.WithString("vaccine_display", mcp.Description("Human-readable vaccine name")),
				mcp.WithString("occurrence_date", mcp.Description("When the immunization occurred (default now)")),
				mcp.WithString("status", mcp.Description("Immunization status (default completed)")),
				mcp.WithString("lot_number", mcp.Description("Vaccine lot number")),
				mcp.WithString("dose_number", mcp.Description("Dose number in the series (numeric or text)")),
			),
			handler: p.handleCreateImmunization,
		},
		{
			tool: mcp.NewTool("fhir_create_observation",
				mcp.WithDescription("Create a new Observation for a patient from individual fields (e.g., pre-vaccination screening)"),
				mcp.WithString("patient_id", mcp.Required(), mcp.Description("The ID of the patient")),
				mcp.WithString("code", mcp.Required(), mcp.Description("The observation code (e.g., a LOINC code)")),
				mcp.WithString("code_system", mcp.Description("The code system (default LOINC)")),
				mcp.WithString("code_display", mcp.Description("Human-readable observation name")),
				mcp.WithString("value_string", mcp.Description("String result value")),
				mcp.WithString("value_quantity", mcp.Description("Numeric result value")),
				mcp.WithString("value_unit", mcp.Description("Unit for the numeric value")),
				mcp.WithString("status", mcp.Description("Observation status (default final)")),
				mcp.WithString("effective_date", mcp.Description("When the observation was made (default now)")),
			),
			handler: p.handleCreateObservation,
		},
		{
			tool: mcp.NewTool("fhir_delete_resource",
				mcp.WithDescription("Delete a FHIR resource by type and ID"),
				mcp.WithString("resource_type", mcp.Required(), mcp.Description("The FHIR resource type (e.g., Patient, Observation)")),
				mcp.WithString("resource_id", mcp.Required(), mcp.Description("The ID of the resource to delete")),
			),
			handler: p.handleDeleteResource,
		},

		// Terminology
		{
			tool: mcp.NewTool("fhir_list_valuesets",
				mcp.WithDescription("List available ValueSet resources from the FHIR server"),
				mcp.WithString("name", mcp.Description("Filter by name (partial match)")),
				mcp.WithString("url", mcp.Description("Filter by URL (partial match)")),
				mcp.WithString("count", mcp.Description("Maximum number of results to return (default 50)")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json")),
			),
			handler: p.handleListValueSets,
		},
		{
			tool: mcp.NewTool("fhir_expand_valueset",
				mcp.WithDescription("Expand a ValueSet to retrieve all codes it contains"),
				mcp.WithString("valueset_id", mcp.Description("The ID of the ValueSet to expand (alternative to URL)")),
				mcp.WithString("valueset_url", mcp.Description("The canonical URL of the ValueSet to expand")),
				mcp.WithString("filter", mcp.Description("Text filter to apply to the expansion")),
				mcp.WithString("count", mcp.Description("Maximum number of codes to return (default 100)")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json")),
			),
			handler: p.handleExpandValueSet,
		},
		{
			tool: mcp.NewTool("fhir_list_codesystems",
				mcp.WithDescription("List available CodeSystem resources from the FHIR server"),
				mcp.WithString("name", mcp.Description("Filter by name (partial match)")),
				mcp.WithString("url", mcp.Description("Filter by URL (partial match)")),
				mcp.WithString("count", mcp.Description("Maximum number of results to return (default 50)")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json")),
			),
			handler: p.handleListCodeSystems,
		},
		{
			tool: mcp.NewTool("fhir_lookup_code",
				mcp.WithDescription("Look up a code in a CodeSystem to get its display name and properties"),
				mcp.WithString("system", mcp.Required(), mcp.Description("The CodeSystem URL (e.g., http://loinc.org)")),
				mcp.WithString("code", mcp.Required(), mcp.Description("The code to look up")),
				mcp.WithString("version", mcp.Description("Optional CodeSystem version")),
			),
			handler: p.handleLookupCode,
		},

		// ImplementationGuides
		{
			tool: mcp.NewTool("fhir_list_implementation_guides",
				mcp.WithDescription("List available ImplementationGuide resources from the FHIR server"),
				mcp.WithString("name", mcp.Description("Filter by name (partial match)")),
				mcp.WithString("count", mcp.Description("Maximum number of results to return (default 50)")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json")),
			),
			handler: p.handleListImplementationGuides,
		},
		{
			tool: mcp.NewTool("fhir_get_implementation_guide",
				mcp.WithDescription("Retrieve an ImplementationGuide by ID or URL"),
				mcp.WithString("implementation_guide_id", mcp.Description("The ID of the ImplementationGuide to retrieve")),
				mcp.WithString("implementation_guide_url", mcp.Description("The canonical URL of the ImplementationGuide (alternative to ID)")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json")),
			),
			handler: p.handleGetImplementationGuide,
		},
		{
			tool: mcp.NewTool("fhir_set_implementation_guide_context",
				mcp.WithDescription("Set the current ImplementationGuide context for subsequent operations; call with no arguments to clear it"),
				mcp.WithString("implementation_guide_id", mcp.Description("The ID of the ImplementationGuide resource")),
				mcp.WithString("implementation_guide_url", mcp.Description("The canonical URL of the ImplementationGuide (alternative to ID)")),
			),
			handler: p.handleSetGuideContext,
		},
		{
			tool: mcp.NewTool("fhir_get_implementation_guide_context",
				mcp.WithDescription("Get the currently set ImplementationGuide context"),
			),
			handler: p.handleGetGuideContext,
		},

		// Patients (originally a dedicated immunization deployment variant)
		{
			tool: mcp.NewTool("fhir_search_patients",
				mcp.WithDescription("Search for patients on the FHIR server with optional name, identifier, or birthdate filters"),
				mcp.WithString("name", mcp.Description("Filter by patient name")),
				mcp.WithString("identifier", mcp.Description("Filter by patient identifier")),
				mcp.WithString("birthdate", mcp.Description("Filter by birth date (e.g., 1990-01-01)")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json")),
			),
			handler: p.handleSearchPatients,
		},
		{
			tool: mcp.NewTool("fhir_get_patient",
				mcp.WithDescription("Get detailed information about a specific patient"),
				mcp.WithString("patient_id", mcp.Required(), mcp.Description("The ID of the patient")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json")),
			),
			handler: p.handleGetPatient,
		},
		{
			tool: mcp.NewTool("fhir_get_patient_immunizations",
				mcp.WithDescription("Get immunization history for a patient"),
				mcp.WithString("patient_id", mcp.Required(), mcp.Description("The ID of the patient")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json")),
			),
			handler: p.handleGetPatientImmunizations,
		},

		// Questionnaires and transformation
		{
			tool: mcp.NewTool("fhir_list_questionnaires",
				mcp.WithDescription("List available Questionnaire resources from the FHIR server"),
				mcp.WithString("title", mcp.Description("Filter by title (partial match)")),
				mcp.WithString("status", mcp.Description("Filter by status (draft, active, retired, unknown)")),
				mcp.WithString("count", mcp.Description("Maximum number of results to return (default 50)")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json")),
			),
			handler: p.handleListQuestionnaires,
		},
		{
			tool: mcp.NewTool("fhir_get_questionnaire",
				mcp.WithDescription("Retrieve a Questionnaire by ID or canonical URL"),
				mcp.WithString("questionnaire_id", mcp.Description("The ID of the Questionnaire to retrieve")),
				mcp.WithString("questionnaire_url", mcp.Description("The canonical URL of the Questionnaire (alternative to ID)")),
				mcp.WithString("response_format", mcp.Description("Output format: markdown or json (default json)")),
			),
			handler: p.handleGetQuestionnaire,
		},
		{
			tool: mcp.NewTool("fhir_transform_questionnaire_response",
				mcp.WithDescription("Transform a QuestionnaireResponse using StructureMap on the Matchbox server to create FHIR resources"),
				mcp.WithString("questionnaire_response_json", mcp.Required(), mcp.Description("The complete QuestionnaireResponse as a JSON string")),
				mcp.WithString("structure_map_url", mcp.Description("Canonical URL of the StructureMap; resolved from the Questionnaire's targetStructureMap extension when omitted")),
			),
			handler: p.handleTransformQuestionnaireResponse,
		},

		// Server introspection
		{
			tool: mcp.NewTool("fhir_get_server_capability",
				mcp.WithDescription("Get the FHIR server's CapabilityStatement to understand supported resources and operations"),
			),
			handler: p.handleGetServerCapability,
		},
	}
}
