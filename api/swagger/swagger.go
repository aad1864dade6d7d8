package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Madrasati API",
        "description": "School management backend: accounts, messaging, attendance, grades and homework",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Registration, login and token lifecycle"},
        {"name": "Approvals", "description": "Administrator account approval queue"},
        {"name": "Students", "description": "Roster management and CSV import"},
        {"name": "Links", "description": "Parent-student and teacher assignment links"},
        {"name": "Messages", "description": "Direct and group messaging"},
        {"name": "Attendance", "description": "Daily attendance recording"},
        {"name": "Grades", "description": "Assessment results"},
        {"name": "Homework", "description": "Assignments and attachments"},
        {"name": "Ticker", "description": "Dashboard news ticker"},
        {"name": "Theme", "description": "School-wide UI theme"},
        {"name": "Extraction", "description": "Roster image extraction"},
        {"name": "Dashboards", "description": "Per-role landing pages"},
        {"name": "Reports", "description": "CSV and PDF exports"},
        {"name": "Files", "description": "Signed attachment downloads"},
        {"name": "Realtime", "description": "Websocket change feed"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
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
        "Envelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
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
