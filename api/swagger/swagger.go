package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Seminary Academic Calendar API",
        "description": "Read-only gateway over the academic calendar backend with month grids and file exports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Calendar", "description": "Academic years, categories and events"},
        {"name": "Export", "description": "CSV, Excel, iCalendar and PDF downloads"},
        {"name": "Ops", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/calendar/academic-years": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List academic years",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Backend unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/academic-years/current": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Current academic year",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No current academic year", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/categories": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List event categories",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/events": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List events",
                "parameters": [
                    {"name": "academic_year", "in": "query", "type": "integer"},
                    {"name": "category", "in": "query", "type": "integer"},
                    {"name": "event_type", "in": "query", "type": "string"},
                    {"name": "priority", "in": "query", "type": "string", "enum": ["low", "medium", "high", "urgent"]},
                    {"name": "time_filter", "in": "query", "type": "string", "enum": ["upcoming", "current", "past", "this_week", "this_month"]},
                    {"name": "featured", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "start_date", "in": "query", "type": "string", "format": "date"},
                    {"name": "end_date", "in": "query", "type": "string", "format": "date"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/month/{year}/{month}": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Month grid with per-day events",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer", "minimum": 1, "maximum": 12}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MonthGridEnvelope"}},
                    "400": {"description": "Invalid year or month", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/upcoming": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Upcoming events",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "days_ahead", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/statistics": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Event statistics",
                "parameters": [
                    {"name": "academic_year", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/export/{format}": {
            "get": {
                "tags": ["Export"],
                "summary": "Download matching events",
                "produces": ["text/csv", "application/vnd.ms-excel", "text/calendar", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "path", "required": true, "type": "string", "enum": ["csv", "excel", "ics", "pdf"]},
                    {"name": "academic_year", "in": "query", "type": "integer"},
                    {"name": "category", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File attachment named {base}_{YYYY-MM-DD}.{ext}"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Nothing to export", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Export failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "MonthRef": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "month": {"type": "integer"}
            }
        },
        "DayCell": {
            "type": "object",
            "properties": {
                "day": {"type": "integer"},
                "date": {"type": "string"},
                "events": {"type": "array", "items": {"type": "object"}},
                "total": {"type": "integer"},
                "more_count": {"type": "integer"},
                "is_today": {"type": "boolean"}
            }
        },
        "MonthGrid": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "month": {"type": "integer"},
                "month_name": {"type": "string"},
                "max_events_per_day": {"type": "integer"},
                "weeks": {"type": "array", "items": {"type": "array", "items": {"$ref": "#/definitions/DayCell"}}},
                "navigation": {
                    "type": "object",
                    "properties": {
                        "previous": {"$ref": "#/definitions/MonthRef"},
                        "next": {"$ref": "#/definitions/MonthRef"},
                        "can_navigate_prev": {"type": "boolean"},
                        "can_navigate_next": {"type": "boolean"},
                        "academic_year": {"type": "string"}
                    }
                },
                "total_events": {"type": "integer"}
            }
        },
        "MonthGridEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/MonthGrid"},
                "meta": {"type": "object"}
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
