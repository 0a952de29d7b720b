package catalog

var scenes = []Scene{
	{ID: "meet-joe-black", Title: "Meet Joe Black (1998)", Actor: "Brad Pitt", VideoURL: "/Brad Pitt.mp4", ThumbnailURL: "/Brad Pitt.jpg"},
	{ID: "bridget-jones", Title: "Bridget Jones's Diary (2001)", Actor: "Renée Zellweger", VideoURL: "/Renee Zellweger.mp4", ThumbnailURL: "/Renee Zellweger.jpg"},
	{ID: "wolf-wall-street", Title: "The Wolf of Wall Street (2013)", Actor: "Leonardo DiCaprio", VideoURL: "/Leonardo DiCaprio.mp4", ThumbnailURL: "/Leonardo DiCaprio.jpg"},
	{ID: "godfather", Title: "The Godfather (1972)", Actor: "Marlon Brando", VideoURL: "/Marlon Brando.mp4", ThumbnailURL: "/Marlon Brando.jpg"},
	{ID: "forrest-gump", Title: "Forrest Gump (1994)", Actor: "Tom Hanks", VideoURL: "/Forrest Gump.mp4", ThumbnailURL: "/Forrest Gump.jpg"},
	{ID: "lucy", Title: "Lucy (2014)", Actor: "Scarlett Johansson", VideoURL: "/Scarlett Johansson.mp4", ThumbnailURL: "/Scarlett Johansson.jpg"},
	{ID: "shining", Title: "The Shining (1980)", Actor: "Jack Nicholson", VideoURL: "/Jack Nicholson.mp4", ThumbnailURL: "/Jack Nicholson.jpg"},
	{ID: "pulp-fiction", Title: "Pulp Fiction (1994)", Actor: "Samuel L. Jackson", VideoURL: "/Samuel L Jackson.mp4", ThumbnailURL: "/Samuel L Jackson.jpg"},
	{ID: "braveheart", Title: "Braveheart (1995)", Actor: "Mel Gibson", VideoURL: "/Mel Gibson.mp4", ThumbnailURL: "/Mel Gibson.jpg"},
	{ID: "dark-knight", Title: "The Dark Knight (2008)", Actor: "Heath Ledger", VideoURL: "/Heath Ledger.mp4", ThumbnailURL: "/Heath Ledger.jpg"},
	{ID: "blinded-lights", Title: "Blinded By The Lights (2018)", Actor: "Jan Frycz", VideoURL: "/Jan Frycz.mp4", ThumbnailURL: "/Jan Frycz.jpg"},
	{ID: "iron-man-2", Title: "Iron Man 2 (2010)", Actor: "Robert Downey Jr.", VideoURL: "/Robert Downey Jr.mp4", ThumbnailURL: "/Robert Downey Jr.jpg"},
	{ID: "spider-man-2", Title: "Spider Man 2 (2004)", Actor: "Tobey Maguire", VideoURL: "/Tobey Maguire.mp4", ThumbnailURL: "/Tobey Maguire.jpg"},
	{ID: "bruce-almighty", Title: "Bruce Almighty (2003)", Actor: "Steve Carell", VideoURL: "/Steve Carell.mp4", ThumbnailURL: "/Steve Carell.jpg"},
}

// DefaultCatalog returns the built-in scene catalog.
func DefaultCatalog() *Catalog {
	c, err := New(scenes)
	if err != nil {
		panic("catalog: invalid built-in scenes: " + err.Error())
	}
	return c
}
