// Package cli implements the signup-cli commands.
//
//	signup-cli wizard   sign up interactively against a running API
//	signup-cli migrate  apply the database schema
//	signup-cli seed     load plans, add-ons and the default plan from YAML
//
// The wizard renders one step at a time and reads line commands such as
// "name Stephen King", "plan 2", "yearly", "addon 1", "next" and "back".
package cli
