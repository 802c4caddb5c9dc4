package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Planner API",
        "description": "Session planning API: sessions, selector catalogs and calendar windows.",
        "version": "0.2.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Sessions", "description": "Scheduled teaching sessions with overlap detection"},
        {"name": "Catalog", "description": "Lookups behind the session form selectors"},
        {"name": "Planning", "description": "Time options, interval checks and calendar windows"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check (database and cache)",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is down"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "Metrics"}}
            }
        },
        "/api/v1/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List sessions",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "description": "active, pending, disabled, archived, deleted or all. Unset hides deleted sessions."},
                    {"name": "class_id", "in": "query", "type": "integer"},
                    {"name": "teacher_id", "in": "query", "type": "integer"},
                    {"name": "classroom_id", "in": "query", "type": "integer"},
                    {"name": "specialization_id", "in": "query", "type": "integer"},
                    {"name": "session_type_id", "in": "query", "type": "integer"},
                    {"name": "course_id", "in": "query", "type": "integer"},
                    {"name": "date_from", "in": "query", "type": "string", "format": "date"},
                    {"name": "date_to", "in": "query", "type": "string", "format": "date"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Create session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed or invalid interval", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Overlaps an existing booking", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sessions/{id}": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "type": "integer"}
            ],
            "get": {
                "tags": ["Sessions"],
                "summary": "Get session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Sessions"],
                "summary": "Update session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Overlaps an existing booking", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Sessions"],
                "summary": "Soft-delete session",
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/school-years": {
            "get": {"tags": ["Catalog"], "summary": "List school years", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/school-years/{id}/periods": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List periods of a school year",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/classes": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List classes of a school year and period",
                "description": "Returns an empty list unless both school_year_id and period_id are given.",
                "parameters": [
                    {"name": "school_year_id", "in": "query", "type": "integer"},
                    {"name": "period_id", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/teachers": {
            "get": {"tags": ["Catalog"], "summary": "List teachers", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/classrooms": {
            "get": {"tags": ["Catalog"], "summary": "List classrooms", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/specializations": {
            "get": {"tags": ["Catalog"], "summary": "List specializations", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/session-types": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List session types",
                "parameters": [{"name": "status", "in": "query", "type": "string", "enum": ["active", "inactive", "all"]}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/courses": {
            "get": {"tags": ["Catalog"], "summary": "List courses", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/planning/time-options": {
            "get": {
                "tags": ["Planning"],
                "summary": "Selectable times of day",
                "description": "06:00 to 23:45 in 15 minute steps plus 00:00 (end of day). With start, only the options after it.",
                "parameters": [{"name": "start", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/planning/validate-interval": {
            "post": {
                "tags": ["Planning"],
                "summary": "Validate a start/end pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IntervalRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/planning/classes/{id}/specialization": {
            "get": {
                "tags": ["Planning"],
                "summary": "Specialization implied by a class",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planning/calendar/week": {
            "get": {
                "tags": ["Planning"],
                "summary": "Week window, Monday to Friday",
                "parameters": [{"name": "anchor", "in": "query", "type": "string", "format": "date"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/planning/calendar/month": {
            "get": {
                "tags": ["Planning"],
                "summary": "Month window, 42 days from the Monday on or before the 1st",
                "parameters": [{"name": "anchor", "in": "query", "type": "string", "format": "date"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/planning/calendar/export": {
            "get": {
                "tags": ["Planning"],
                "summary": "Export a calendar window as PDF or CSV",
                "produces": ["application/pdf", "text/csv"],
                "parameters": [
                    {"name": "view", "in": "query", "type": "string", "enum": ["week", "month"]},
                    {"name": "anchor", "in": "query", "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "csv"]},
                    {"name": "conflict_date", "in": "query", "type": "string", "format": "date"},
                    {"name": "conflict_start", "in": "query", "type": "string"},
                    {"name": "conflict_end", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "503": {"description": "Exports disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planning/calendar/export-jobs": {
            "post": {
                "tags": ["Planning"],
                "summary": "Queue a calendar export",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportJobRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Exports disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planning/calendar/export-jobs/{id}": {
            "get": {
                "tags": ["Planning"],
                "summary": "Export job status",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planning/calendar/downloads/{token}": {
            "get": {
                "tags": ["Planning"],
                "summary": "Download a finished export",
                "produces": ["application/pdf", "text/csv"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ExportJobRequest": {
            "type": "object",
            "properties": {
                "view": {"type": "string", "enum": ["week", "month"]},
                "anchor": {"type": "string", "format": "date"},
                "format": {"type": "string", "enum": ["pdf", "csv"]},
                "status": {"type": "string"},
                "class_id": {"type": "integer"},
                "teacher_id": {"type": "integer"},
                "classroom_id": {"type": "integer"},
                "specialization_id": {"type": "integer"},
                "session_type_id": {"type": "integer"},
                "course_id": {"type": "integer"},
                "conflict_date": {"type": "string", "format": "date"},
                "conflict_start": {"type": "string"},
                "conflict_end": {"type": "string"}
            }
        },
        "SessionPayload": {
            "type": "object",
            "required": ["period", "date", "start_time", "end_time", "teacher_id", "class_id", "classroom_id", "session_type_id", "course_id", "school_year_id"],
            "properties": {
                "period": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "start_time": {"type": "string", "example": "08:00"},
                "end_time": {"type": "string", "example": "09:30"},
                "teacher_id": {"type": "integer"},
                "specialization_id": {"type": "integer"},
                "class_id": {"type": "integer"},
                "classroom_id": {"type": "integer"},
                "session_type_id": {"type": "integer"},
                "course_id": {"type": "integer"},
                "school_year_id": {"type": "integer"},
                "status": {"type": "string", "enum": ["active", "pending", "disabled", "archived"]}
            }
        },
        "IntervalRequest": {
            "type": "object",
            "properties": {
                "start_time": {"type": "string"},
                "end_time": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next": {"type": "boolean"},
                "has_previous": {"type": "boolean"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
