package catalog

// Instructions is advertised to clients when a session initializes.
const Instructions = `This server provides access to Dune Analytics for blockchain data analysis.

Before writing SQL, read the guide resources:
- dune://guide/sql-syntax: DuneSQL (Trino) syntax reference
- dune://guide/tables: available tables and schemas
- dune://guide/query-patterns: common query patterns for blockchain data

Queries run asynchronously: execute_sql and execute_query return an execution_id.
Poll get_execution_status until the state is QUERY_STATE_COMPLETED, then fetch
rows with get_execution_results or get_execution_results_csv.`
