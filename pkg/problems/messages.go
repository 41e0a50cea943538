package problems

import "fmt"

// Defunct is the error for a removed key that is still supplied.
func Defunct(class, key string) Message {
	return Message{
		Severity: SeverityError,
		Kind:     KindDefunct,
		Class:    class,
		Key:      key,
		Text:     fmt.Sprintf("Defunct property '%s' (%s)", key, class),
	}
}

// Conflict is the error for a legacy key supplied next to the key it was
// replaced by (or next to another legacy key of the same property).
func Conflict(class, alias, operative string) Message {
	return Message{
		Severity: SeverityError,
		Kind:     KindConflict,
		Class:    class,
		Key:      alias,
		Text:     fmt.Sprintf("Configuration property '%s' conflicts with property '%s' (%s)", alias, operative, class),
	}
}

// Replaced is the warning for any use of a legacy key.
func Replaced(class, alias, current string) Message {
	return Message{
		Severity: SeverityWarning,
		Kind:     KindReplaced,
		Class:    class,
		Key:      alias,
		Text:     fmt.Sprintf("Configuration property '%s' has been replaced. Use '%s' instead.", alias, current),
	}
}

// Deprecated is the warning for use of a key marked deprecated.
func Deprecated(class, key string) Message {
	return Message{
		Severity: SeverityWarning,
		Kind:     KindDeprecated,
		Class:    class,
		Key:      key,
		Text:     fmt.Sprintf("Configuration property '%s' is deprecated and should not be used", key),
	}
}

// InvalidValue is the error for a raw value that could not be coerced.
// text is the coercion failure message; the class is appended to it.
func InvalidValue(class, key, text string) Message {
	return Message{
		Severity: SeverityError,
		Kind:     KindInvalid,
		Class:    class,
		Key:      key,
		Text:     fmt.Sprintf("%s (%s)", text, class),
	}
}

// Constraint is the error for a declared constraint that does not hold.
func Constraint(class, key, violation string) Message {
	return Message{
		Severity: SeverityError,
		Kind:     KindConstraint,
		Class:    class,
		Key:      key,
		Text:     fmt.Sprintf("Invalid configuration property %s: %s (%s)", key, violation, class),
	}
}

// InvalidConfiguration is the error for a class-level check that failed.
func InvalidConfiguration(class string, err error) Message {
	return Message{
		Severity: SeverityError,
		Kind:     KindInvalidType,
		Class:    class,
		Text:     fmt.Sprintf("Invalid configuration: %v (%s)", err, class),
	}
}

// Unused is the error for a supplied key no class consumed.
func Unused(key string) Message {
	return Message{
		Severity: SeverityError,
		Kind:     KindUnused,
		Key:      key,
		Text:     fmt.Sprintf("Configuration property '%s' was not used", key),
	}
}
