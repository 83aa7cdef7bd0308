package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Ebhath API",
        "description": "Application wizard, intake and site content for the Ebhath research program.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Forms", "description": "Multi-step application wizard sessions"},
        {"name": "Applications", "description": "Completed application intake"},
        {"name": "Content", "description": "Static site content"},
        {"name": "Contact", "description": "Contact page messages"}
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
                    "503": {"description": "A dependency is unreachable"}
                }
            }
        },
        "/api/applications": {
            "post": {
                "tags": ["Applications"],
                "summary": "Store a completed application",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplicationDocument"}}
                ],
                "responses": {
                    "200": {"description": "Stored", "schema": {"$ref": "#/definitions/IntakeResponse"}},
                    "400": {"description": "Missing required fields", "schema": {"$ref": "#/definitions/IntakeResponse"}},
                    "500": {"description": "Database failure", "schema": {"$ref": "#/definitions/IntakeResponse"}},
                    "503": {"description": "Database unreachable", "schema": {"$ref": "#/definitions/IntakeResponse"}}
                }
            }
        },
        "/api/v1/forms": {
            "post": {
                "tags": ["Forms"],
                "summary": "Open a form session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateFormSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown application type", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Applications closed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/forms/schema": {
            "get": {
                "tags": ["Forms"],
                "summary": "Describe the application wizard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/forms/{token}": {
            "get": {
                "tags": ["Forms"],
                "summary": "Get form state",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid or expired session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Forms"],
                "summary": "Edit form fields",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateFormFieldsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown field", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/forms/{token}/work-sample": {
            "put": {
                "tags": ["Forms"],
                "summary": "Attach a work sample",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Forms"],
                "summary": "Remove the work sample",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/forms/{token}/next": {
            "post": {
                "tags": ["Forms"],
                "summary": "Advance the wizard or submit on the last step",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Step incomplete", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Submission in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "File processing failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Too many submissions", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Document store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/forms/{token}/previous": {
            "post": {
                "tags": ["Forms"],
                "summary": "Go back one step",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/content/site": {
            "get": {
                "tags": ["Content"],
                "summary": "Site copy, mission and contact details",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/content/courses": {
            "get": {
                "tags": ["Content"],
                "summary": "List courses",
                "parameters": [
                    {"name": "available", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/content/team": {
            "get": {
                "tags": ["Content"],
                "summary": "List team members",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/content/testimonials": {
            "get": {
                "tags": ["Content"],
                "summary": "List testimonials",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/contact": {
            "post": {
                "tags": ["Contact"],
                "summary": "Send a contact message",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContactRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateFormSessionRequest": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "type": {"type": "string", "enum": ["member", "mentor"]}
            }
        },
        "UpdateFormFieldsRequest": {
            "type": "object",
            "required": ["fields"],
            "properties": {
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "ContactRequest": {
            "type": "object",
            "required": ["name", "email", "subject", "message"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "subject": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ApplicationDocument": {
            "type": "object",
            "required": ["personal_info", "research_preferences", "commitments", "essay", "metadata"],
            "properties": {
                "personal_info": {"type": "object"},
                "research_preferences": {"type": "object"},
                "commitments": {"type": "object"},
                "essay": {"type": "string"},
                "metadata": {"type": "object"}
            }
        },
        "IntakeResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "id": {"type": "string"},
                "error": {"type": "string"}
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
