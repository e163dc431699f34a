// Package catalog declares the analytics API tools. Each entry maps one tool
// onto one endpoint; the request builder and normalizer are driven entirely
// by these tables.
package catalog

import (
	"net/http"

	"dunemcp/internal/domain"
)

const (
	readOnly    = "readOnly"
	destructive = "destructive"
)

var zero = 0.0

var performanceTiers = []string{"medium", "large"}

func executionID(description string) domain.ArgSpec {
	return domain.ArgSpec{
		Name:        "execution_id",
		Type:        domain.ArgString,
		Description: description,
		Required:    true,
		Target:      domain.TargetPath,
	}
}

func queryID(description string) domain.ArgSpec {
	return domain.ArgSpec{
		Name:        "query_id",
		Type:        domain.ArgInteger,
		Description: description,
		Required:    true,
		Target:      domain.TargetPath,
	}
}

func tableArgs(tableDescription string) []domain.ArgSpec {
	return []domain.ArgSpec{
		{Name: "namespace", Type: domain.ArgString, Description: "Namespace of the table.", Required: true, Target: domain.TargetPath},
		{Name: "table_name", Type: domain.ArgString, Description: tableDescription, Required: true, Target: domain.TargetPath},
	}
}

func performance(target domain.ArgTarget, description string) domain.ArgSpec {
	return domain.ArgSpec{
		Name:        "performance",
		Type:        domain.ArgString,
		Description: description,
		Default:     "medium",
		Enum:        performanceTiers,
		Target:      target,
	}
}

func pageArgs(limitDescription, offsetDescription string) []domain.ArgSpec {
	return []domain.ArgSpec{
		{Name: "limit", Type: domain.ArgInteger, Description: limitDescription, Default: 100, Minimum: &zero, Target: domain.TargetQuery},
		{Name: "offset", Type: domain.ArgInteger, Description: offsetDescription, Default: 0, Minimum: &zero, Target: domain.TargetQuery},
	}
}

func allowPartial(description string) domain.ArgSpec {
	return domain.ArgSpec{
		Name:        "allow_partial_results",
		Type:        domain.ArgBoolean,
		Description: description,
		Default:     false,
		Target:      domain.TargetQuery,
	}
}

func hints(kind string) domain.ToolHints {
	switch kind {
	case readOnly:
		return domain.ToolHints{ReadOnly: true, Idempotent: true}
	case destructive:
		return domain.ToolHints{Destructive: true}
	default:
		return domain.ToolHints{}
	}
}

func concat(groups ...[]domain.ArgSpec) []domain.ArgSpec {
	var out []domain.ArgSpec
	for _, group := range groups {
		out = append(out, group...)
	}
	return out
}

// Tools returns the full tool table in advertisement order.
func Tools() []domain.ToolSpec {
	tools := make([]domain.ToolSpec, 0, 19)
	tools = append(tools, executionTools()...)
	tools = append(tools, queryTools()...)
	tools = append(tools, tableTools()...)
	return tools
}

func executionTools() []domain.ToolSpec {
	return []domain.ToolSpec{
		{
			Name:  "execute_sql",
			Title: "Execute SQL",
			Description: "Execute a raw SQL query against Dune's data engine. " +
				"This is the primary tool for running custom SQL on blockchain data. " +
				"Returns an execution_id that can be used to check status and retrieve results. " +
				"Read dune://guide/sql-syntax before writing queries.",
			Args: []domain.ArgSpec{
				{
					Name:        "sql",
					Type:        domain.ArgString,
					Description: "The SQL query to execute. Use DuneSQL (Trino) syntax.",
					Required:    true,
					Target:      domain.TargetBody,
				},
				performance(domain.TargetBody, `Performance tier: "medium" (default) or "large" for complex queries.`),
			},
			Endpoint: domain.EndpointSpec{Method: http.MethodPost, Path: "/sql/execute"},
			Response: domain.ResponseStructured,
		},
		{
			Name:  "get_execution_status",
			Title: "Get execution status",
			Description: "Check the status of a query execution. Use this to poll for completion " +
				"after executing a query. Returns the state (QUERY_STATE_EXECUTING, QUERY_STATE_COMPLETED, ...), " +
				"queue position and timing information.",
			Args:     []domain.ArgSpec{executionID("The execution ID returned from execute_sql or execute_query.")},
			Endpoint: domain.EndpointSpec{Method: http.MethodGet, Path: "/execution/{execution_id}/status"},
			Response: domain.ResponseStructured,
			Hints:    hints(readOnly),
		},
		{
			Name:        "get_execution_results",
			Title:       "Get execution results",
			Description: "Retrieve the results of a completed query execution: rows, column metadata and pagination info.",
			Args: concat(
				[]domain.ArgSpec{executionID("The execution ID from a completed query.")},
				pageArgs("Maximum number of rows to return (default 100).", "Row offset for pagination (default 0)."),
			),
			Endpoint: domain.EndpointSpec{Method: http.MethodGet, Path: "/execution/{execution_id}/results"},
			Response: domain.ResponseStructured,
			Hints:    hints(readOnly),
		},
		{
			Name:        "get_execution_results_csv",
			Title:       "Get execution results as CSV",
			Description: "Retrieve query execution results in CSV format. The CSV text is returned under csv_data. Bodies over the configured response size limit fail with UPSTREAM_ERROR (reason too_large).",
			Args: []domain.ArgSpec{
				executionID("The execution ID from a completed query."),
				allowPartial("Allow truncated results if the data exceeds 8GB."),
			},
			Endpoint: domain.EndpointSpec{Method: http.MethodGet, Path: "/execution/{execution_id}/results/csv"},
			Response: domain.ResponseTabular,
			Hints:    hints(readOnly),
		},
		{
			Name:        "cancel_execution",
			Title:       "Cancel execution",
			Description: "Cancel an ongoing query execution.",
			Args:        []domain.ArgSpec{executionID("The execution ID of the running query.")},
			Endpoint:    domain.EndpointSpec{Method: http.MethodPost, Path: "/execution/{execution_id}/cancel"},
			Response:    domain.ResponseStructured,
		},
	}
}

func queryTools() []domain.ToolSpec {
	return []domain.ToolSpec{
		{
			Name:        "execute_query",
			Title:       "Execute saved query",
			Description: "Execute a saved query by its ID. Returns execution details including the execution_id.",
			Args: []domain.ArgSpec{
				queryID("The unique identifier of the saved query."),
				{
					Name:        "query_parameters",
					Type:        domain.ArgObject,
					Description: "Optional parameters to pass to the query as key-value pairs.",
					Target:      domain.TargetBody,
					OmitZero:    true,
				},
				performance(domain.TargetBody, `Performance tier: "medium" (default) or "large".`),
			},
			Endpoint: domain.EndpointSpec{Method: http.MethodPost, Path: "/query/{query_id}/execute"},
			Response: domain.ResponseStructured,
		},
		{
			Name:        "get_query",
			Title:       "Get query",
			Description: "Retrieve details about a saved query: SQL, parameters, name, tags and state.",
			Args:        []domain.ArgSpec{queryID("The unique identifier of the query.")},
			Endpoint:    domain.EndpointSpec{Method: http.MethodGet, Path: "/query/{query_id}"},
			Response:    domain.ResponseStructured,
			Hints:       hints(readOnly),
		},
		{
			Name:  "get_query_results",
			Title: "Get latest query results",
			Description: "Get the latest results of a saved query without re-executing it. " +
				"Returns cached results from the most recent execution; consumes credits.",
			Args: concat(
				[]domain.ArgSpec{queryID("The unique identifier of the query.")},
				pageArgs("Maximum rows to return.", "Row offset for pagination."),
				[]domain.ArgSpec{allowPartial("Allow truncated results if the data is too large.")},
			),
			Endpoint: domain.EndpointSpec{Method: http.MethodGet, Path: "/query/{query_id}/results"},
			Response: domain.ResponseStructured,
			Hints:    hints(readOnly),
		},
		{
			Name:        "get_query_results_csv",
			Title:       "Get latest query results as CSV",
			Description: "Get the latest results of a saved query in CSV format. The CSV text is returned under csv_data. Bodies over the configured response size limit fail with UPSTREAM_ERROR (reason too_large).",
			Args: []domain.ArgSpec{
				queryID("The unique identifier of the query."),
				allowPartial("Allow truncated results if the data exceeds the limit."),
				{Name: "columns", Type: domain.ArgString, Description: "Comma-separated list of column names to return.", Target: domain.TargetQuery, OmitZero: true},
				{Name: "sort_by", Type: domain.ArgString, Description: `SQL ORDER BY expression, e.g. "volume DESC".`, Target: domain.TargetQuery, OmitZero: true},
				{Name: "filters", Type: domain.ArgString, Description: "SQL WHERE clause expression for filtering rows.", Target: domain.TargetQuery, OmitZero: true},
				{Name: "limit", Type: domain.ArgInteger, Description: "Maximum number of rows to return.", Minimum: &zero, Target: domain.TargetQuery, OmitZero: true},
				{Name: "offset", Type: domain.ArgInteger, Description: "Row offset for pagination.", Minimum: &zero, Target: domain.TargetQuery, OmitZero: true},
			},
			Endpoint: domain.EndpointSpec{Method: http.MethodGet, Path: "/query/{query_id}/results/csv"},
			Response: domain.ResponseTabular,
			Hints:    hints(readOnly),
		},
		{
			Name:        "create_query",
			Title:       "Create query",
			Description: "Create and save a new query on Dune. Returns the created query including its query_id.",
			Args: []domain.ArgSpec{
				{Name: "name", Type: domain.ArgString, Description: "Name for the query.", Required: true, Target: domain.TargetBody},
				{Name: "query_sql", Type: domain.ArgString, Description: "The SQL query text. Use {{param_name}} for parameters.", Required: true, Target: domain.TargetBody},
				{Name: "description", Type: domain.ArgString, Description: "Optional description of what the query does.", Default: "", Target: domain.TargetBody},
				{Name: "is_private", Type: domain.ArgBoolean, Description: "Whether the query should be private.", Default: false, Target: domain.TargetBody},
				{
					Name: "parameters",
					Type: domain.ArgArray,
					Description: "Optional parameter definitions, each with key, value, " +
						`type ("text", "number" or "enum") and enumOptions for enum parameters. See dune://guide/parameters.`,
					Items:    domain.ArgObject,
					Target:   domain.TargetBody,
					OmitZero: true,
				},
				{Name: "tags", Type: domain.ArgArray, Description: "Optional list of tags for organization.", Items: domain.ArgString, Target: domain.TargetBody, OmitZero: true},
			},
			Endpoint: domain.EndpointSpec{Method: http.MethodPost, Path: "/query"},
			Response: domain.ResponseStructured,
		},
		{
			Name:        "update_query",
			Title:       "Update query",
			Description: "Update an existing saved query. Only the fields provided are changed.",
			Args: []domain.ArgSpec{
				{
					Name:        "query_id",
					Type:        domain.ArgInteger,
					Description: "The unique identifier of the query to update.",
					Required:    true,
					Target:      domain.TargetPath | domain.TargetBody,
				},
				{Name: "query_sql", Type: domain.ArgString, Description: "New SQL query text.", Target: domain.TargetBody},
				{Name: "name", Type: domain.ArgString, Description: "New name for the query.", Target: domain.TargetBody, Wire: "query_name"},
				{Name: "description", Type: domain.ArgString, Description: "New description.", Target: domain.TargetBody},
				{Name: "parameters", Type: domain.ArgArray, Description: "New parameter definitions.", Items: domain.ArgObject, Target: domain.TargetBody},
				{Name: "tags", Type: domain.ArgArray, Description: "New tags list.", Items: domain.ArgString, Target: domain.TargetBody, Wire: "query_tags"},
				{Name: "is_private", Type: domain.ArgBoolean, Description: "Change the privacy setting.", Target: domain.TargetBody, Wire: "is_public", Negate: true},
			},
			Endpoint: domain.EndpointSpec{Method: http.MethodPatch, Path: "/query/{query_id}"},
			Response: domain.ResponseStructured,
			Hints:    domain.ToolHints{Idempotent: true},
		},
		{
			Name:        "archive_query",
			Title:       "Archive query",
			Description: "Archive a query, making it uneditable and unexecutable.",
			Args:        []domain.ArgSpec{queryID("The unique identifier of the query to archive.")},
			Endpoint:    domain.EndpointSpec{Method: http.MethodPost, Path: "/query/{query_id}/archive"},
			Response:    domain.ResponseStructured,
			Hints:       hints(destructive),
		},
		{
			Name:        "make_query_private",
			Title:       "Make query private",
			Description: "Make a query private, restricting access to the owner.",
			Args:        []domain.ArgSpec{queryID("The unique identifier of the query.")},
			Endpoint:    domain.EndpointSpec{Method: http.MethodPatch, Path: "/query/{query_id}/private"},
			Response:    domain.ResponseStructured,
			Hints:       domain.ToolHints{Idempotent: true},
		},
		{
			Name:        "make_query_public",
			Title:       "Make query public",
			Description: "Make a private query public, allowing broader access.",
			Args:        []domain.ArgSpec{queryID("The unique identifier of the query.")},
			Endpoint:    domain.EndpointSpec{Method: http.MethodPatch, Path: "/query/{query_id}/unprivate"},
			Response:    domain.ResponseStructured,
			Hints:       domain.ToolHints{Idempotent: true},
		},
	}
}

func tableTools() []domain.ToolSpec {
	return []domain.ToolSpec{
		{
			Name:  "upload_csv",
			Title: "Upload CSV",
			Description: "Upload CSV data to create or overwrite a table in Dune. Maximum size is 200MB; " +
				"uploading to an existing table overwrites all of its data.",
			Args: []domain.ArgSpec{
				{Name: "table_name", Type: domain.ArgString, Description: "Name for the table, accessible as dune.<namespace>.<table_name>.", Required: true, Target: domain.TargetBody},
				{Name: "data", Type: domain.ArgString, Description: "CSV data as a string, including headers.", Required: true, Target: domain.TargetBody},
				{Name: "description", Type: domain.ArgString, Description: "Optional description of the data.", Default: "", Target: domain.TargetBody},
				{Name: "is_private", Type: domain.ArgBoolean, Description: "Whether the table should be private.", Default: false, Target: domain.TargetBody},
			},
			Endpoint: domain.EndpointSpec{Method: http.MethodPost, Path: "/table/upload/csv"},
			Response: domain.ResponseStructured,
			Hints:    hints(destructive),
		},
		{
			Name:        "create_table",
			Title:       "Create table",
			Description: "Create a new table with a defined schema.",
			Args: []domain.ArgSpec{
				{Name: "namespace", Type: domain.ArgString, Description: "Namespace for the table, usually your username.", Required: true, Target: domain.TargetBody},
				{Name: "table_name", Type: domain.ArgString, Description: "Name for the table.", Required: true, Target: domain.TargetBody},
				{
					Name: "columns",
					Type: domain.ArgArray,
					Description: "Column definitions, each with name, type " +
						`("string", "integer", "double", "timestamp" or "boolean") and optional nullable (default true).`,
					Required: true,
					Items:    domain.ArgObject,
					Target:   domain.TargetBody,
				},
				{Name: "is_public", Type: domain.ArgBoolean, Description: "Whether the table is publicly accessible.", Default: false, Target: domain.TargetBody},
			},
			Endpoint: domain.EndpointSpec{Method: http.MethodPost, Path: "/uploads"},
			Response: domain.ResponseStructured,
		},
		{
			Name:        "insert_table_rows",
			Title:       "Insert table rows",
			Description: "Insert rows into an existing table. Row keys must match the column names.",
			Args: concat(
				tableArgs("Name of the table."),
				[]domain.ArgSpec{{
					Name:        "rows",
					Type:        domain.ArgArray,
					Description: "Row objects whose keys match the table's column names.",
					Required:    true,
					Items:       domain.ArgObject,
					Target:      domain.TargetBody,
				}},
			),
			Endpoint: domain.EndpointSpec{Method: http.MethodPost, Path: "/uploads/{namespace}/{table_name}/insert"},
			Response: domain.ResponseStructured,
		},
		{
			Name:        "clear_table",
			Title:       "Clear table",
			Description: "Remove all data from a table while preserving its schema.",
			Args:        tableArgs("Name of the table to clear."),
			Endpoint:    domain.EndpointSpec{Method: http.MethodPost, Path: "/uploads/{namespace}/{table_name}/clear"},
			Response:    domain.ResponseStructured,
			Hints:       hints(destructive),
		},
		{
			Name:        "delete_table",
			Title:       "Delete table",
			Description: "Permanently delete a table and all its data. This operation is irreversible.",
			Args:        tableArgs("Name of the table to delete."),
			Endpoint:    domain.EndpointSpec{Method: http.MethodDelete, Path: "/uploads/{namespace}/{table_name}"},
			Response:    domain.ResponseStructured,
			Hints:       domain.ToolHints{Destructive: true, Idempotent: true},
		},
	}
}
