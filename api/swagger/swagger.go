package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Housing Check API",
        "description": "Housing-safety verification workflow for student rentals",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token lifecycle"},
        {"name": "Campaigns", "description": "Tutor verification campaigns"},
        {"name": "Submissions", "description": "Student housing disclosures"},
        {"name": "Reviews", "description": "Tutor verdicts on disclosures"},
        {"name": "Notifications", "description": "Report and push notification ledger"},
        {"name": "Uploads", "description": "Evidence photo storage"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Expired or revoked"}
                }
            }
        },
        "/permission-create": {
            "post": {
                "tags": ["Campaigns"],
                "summary": "Open a verification campaign",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/my-permissions": {
            "get": {
                "tags": ["Campaigns"],
                "summary": "List campaigns with progress counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/my-permissions/export": {
            "get": {
                "tags": ["Campaigns"],
                "summary": "Export the campaign summary",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/{permissionId}/{groupId}": {
            "get": {
                "tags": ["Campaigns"],
                "summary": "Campaign detail with per-group progress",
                "parameters": [
                    {"name": "permissionId", "in": "path", "required": true, "type": "string"},
                    {"name": "groupId", "in": "path", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Campaign not found"}
                }
            }
        },
        "/special": {
            "post": {
                "tags": ["Campaigns"],
                "summary": "Force students back to must-resubmit",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/OverrideEntry"}}}
                ],
                "responses": {
                    "204": {"description": "Applied"},
                    "400": {"description": "Conflict, batch aborted"}
                }
            }
        },
        "/appartment/create": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Submit a housing disclosure",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation or duplicate submission"}
                }
            }
        },
        "/appartment/{id}": {
            "put": {
                "tags": ["Submissions"],
                "summary": "Replace evidence on an existing disclosure",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Submission not found"}
                }
            }
        },
        "/appartment/check": {
            "post": {
                "tags": ["Reviews"],
                "summary": "Record per-evidence verdicts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid verdicts or finished campaign"}
                }
            }
        },
        "/appartment/status/{status}": {
            "get": {
                "tags": ["Submissions"],
                "summary": "List current disclosures by aggregate status",
                "parameters": [
                    {"name": "status", "in": "path", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notification/report": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Create a report-channel notification",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notification/push": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Create a push-channel notification",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notification/report/{userId}": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List report-channel notifications",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notification/push/{userId}": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List push-channel notifications",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notification/report/{userId}/read": {
            "put": {
                "tags": ["Notifications"],
                "summary": "Mark all report-channel notifications read",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Marked"}
                }
            }
        },
        "/upload": {
            "post": {
                "tags": ["Uploads"],
                "summary": "Upload an evidence photo",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/{name}": {
            "get": {
                "tags": ["Uploads"],
                "summary": "Download a stored evidence photo",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "401": {"description": "Invalid token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "OverrideEntry": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "permissionId": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
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
