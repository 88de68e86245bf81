// parser.go — Sample template and content JSON for goposter init.
package template

import "encoding/json"

// GetExampleJSON returns a sample canonical template.json and a matching
// content.json for goposter init. The template references background.png and
// the content references photo.png, both relative to the written files.
func GetExampleJSON() (templateJSON, contentJSON string) {
	templateJSON = `{
  "id": "classic-endorsement",
  "name": "Classic Endorsement",
  "category": "endorsement",
  "schemaVersion": 3,
  "imageUrls": {
    "thumbnail": "background.png",
    "preview": "background.png",
    "full": "background.png"
  },
  "layoutConfig": {
    "layoutStyle": "photo-center",
    "photoZones": [
      { "x": 88, "y": 1560, "width": 368, "height": 368, "borderRadius": 184 }
    ],
    "textZones": [
      {
        "type": "name",
        "x": 500, "y": 1620, "width": 1400, "height": 160,
        "fontSize": 72,
        "fontFamily": "Go",
        "fontWeight": "bold",
        "color": "#ffffff",
        "textAlign": "left",
        "textTransform": "uppercase"
      },
      {
        "type": "title",
        "x": 500, "y": 1800, "width": 1400, "height": 120,
        "fontSize": 48,
        "fontFamily": "Go",
        "fontWeight": "normal",
        "color": "#e0e0e0",
        "textAlign": "left"
      }
    ]
  }
}`

	contentJSON = `{
  "name": "Jordan Avery",
  "title": "Chief Technology Officer",
  "photoUrl": "photo.png"
}`
	return
}

// ExampleTemplate returns the parsed sample template.
func ExampleTemplate() Template {
	tplJSON, _ := GetExampleJSON()
	var t Template
	if err := json.Unmarshal([]byte(tplJSON), &t); err != nil {
		panic("template: broken example JSON: " + err.Error())
	}
	return t
}
