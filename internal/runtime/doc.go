// Package runtime models the agent's runtime prefix (a Python virtualenv) and
// runs the executables that live inside it. Commands are executed through the
// CommandRunner interface so the installer can be exercised against a fake.
package runtime
