// Package notify reports failed passes on the desktop (notify-send) and to a webhook.
package notify
