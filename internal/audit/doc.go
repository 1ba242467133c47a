// Package audit records configuration changes made through the admin tool.
//
// Every upsert, removal, and enable/disable of a user's lighting row is
// written to the audit_logs table so operators can see who changed which
// light and when. The bridge reads the history through the status API.
package audit
