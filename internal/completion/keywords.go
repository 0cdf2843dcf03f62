package completion

// Keywords are the GoogleSQL (BigQuery standard SQL) keywords offered for
// completion.
var Keywords = []string{
	"SELECT", "FROM", "WHERE", "JOIN", "LEFT", "RIGHT", "INNER", "OUTER",
	"FULL", "CROSS", "ON", "USING", "AND", "OR", "NOT", "IN", "EXISTS",
	"BETWEEN", "LIKE", "IS", "NULL", "TRUE", "FALSE", "AS", "CASE", "WHEN",
	"THEN", "ELSE", "END", "GROUP", "BY", "ORDER", "ASC", "DESC", "HAVING",
	"LIMIT", "OFFSET", "DISTINCT", "ALL", "UNION", "INTERSECT", "EXCEPT",
	"WITH", "RECURSIVE", "QUALIFY", "WINDOW", "OVER", "PARTITION", "ROWS",
	"RANGE", "UNBOUNDED", "PRECEDING", "FOLLOWING", "CURRENT", "ROW",
	"UNNEST", "STRUCT", "ARRAY", "INTERVAL", "TABLESAMPLE", "SYSTEM",
	"PERCENT", "FOR", "SYSTEM_TIME", "OF", "PIVOT", "UNPIVOT", "ROLLUP",
	"NULLS", "FIRST", "LAST", "IGNORE", "RESPECT", "REPLACE",
}

// Functions are the GoogleSQL functions offered for completion.
var Functions = []string{
	// Aggregate
	"COUNT", "COUNTIF", "SUM", "AVG", "MIN", "MAX", "ANY_VALUE",
	"ARRAY_AGG", "STRING_AGG", "LOGICAL_AND", "LOGICAL_OR",
	"APPROX_COUNT_DISTINCT", "APPROX_QUANTILES", "APPROX_TOP_COUNT",
	// Conditional
	"IF", "IFNULL", "NULLIF", "COALESCE",
	// Conversion
	"CAST", "SAFE_CAST", "PARSE_DATE", "PARSE_TIMESTAMP", "FORMAT_DATE",
	"FORMAT_TIMESTAMP",
	// String
	"CONCAT", "LOWER", "UPPER", "TRIM", "LTRIM", "RTRIM", "LENGTH",
	"SUBSTR", "REPLACE", "SPLIT", "STARTS_WITH", "ENDS_WITH", "REGEXP_CONTAINS",
	"REGEXP_EXTRACT", "REGEXP_REPLACE", "FORMAT",
	// Date and time
	"CURRENT_DATE", "CURRENT_TIMESTAMP", "CURRENT_DATETIME", "DATE",
	"DATETIME", "TIMESTAMP", "DATE_ADD", "DATE_SUB", "DATE_DIFF",
	"DATE_TRUNC", "TIMESTAMP_ADD", "TIMESTAMP_SUB", "TIMESTAMP_DIFF",
	"TIMESTAMP_TRUNC", "EXTRACT",
	// Math
	"ABS", "CEIL", "FLOOR", "ROUND", "TRUNC", "MOD", "POW", "SQRT", "LOG",
	"SAFE_DIVIDE", "RAND",
	// Navigation and numbering
	"ROW_NUMBER", "RANK", "DENSE_RANK", "NTILE", "LAG", "LEAD",
	"FIRST_VALUE", "LAST_VALUE",
	// Array and JSON
	"ARRAY_LENGTH", "GENERATE_ARRAY", "GENERATE_DATE_ARRAY",
	"JSON_EXTRACT", "JSON_EXTRACT_SCALAR", "JSON_VALUE", "TO_JSON_STRING",
}
