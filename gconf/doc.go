/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Every extension that needs configuration keeps a single object in the
database, under a key derived from the extension name. The object is
created from the "conf" section of the genesis file and can be updated
later by the configuration owner, using the UpdateConfigurationHandler.

Not being able to get a configuration value is a critical condition for the
application. Handlers return the error and the transaction fails.
*/
package gconf
