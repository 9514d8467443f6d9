package core

// Helpline is a crisis line shown next to the distress banner.
type Helpline struct {
	Country string `json:"country"`
	Name    string `json:"name"`
	Number  string `json:"number"`
}

type WellnessTip struct {
	Title       string `json:"title"`
	Duration    string `json:"duration"`
	Benefit     string `json:"benefit"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Resource struct {
	Type   string  `json:"type"` // Book, Podcast or eBook
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Rating float64 `json:"rating"`
	Link   string  `json:"link"`
	Image  string  `json:"image"`
}

var Helplines = []Helpline{
	{Country: "India", Name: "KIRAN", Number: "1800-599-0019"},
	{Country: "USA", Name: "988 Suicide & Crisis Lifeline", Number: "988"},
	{Country: "UK", Name: "Samaritans", Number: "116 123"},
}

var WellnessTips = []WellnessTip{
	{Title: "Meditation", Duration: "10-15 mins", Benefit: "Reduces stress and improves focus.", Description: "Find a quiet place, sit comfortably, and focus on your breath. Let thoughts come and go without judgment. There are many guided meditation apps available to help you start.", Icon: "🧘"},
	{Title: "Breathing", Duration: "5 mins", Benefit: "Calms the nervous system instantly.", Description: "Inhale slowly for 4 counts, hold for 4 counts, and exhale slowly for 6 counts. Repeat this for several minutes to feel a sense of calm.", Icon: "🌬️"},
	{Title: "Yoga", Duration: "20-30 mins", Benefit: "Improves flexibility and mood.", Description: "Gentle yoga poses combined with breathing can release tension from your body and mind. Look for beginner-friendly yoga videos online.", Icon: "🤸"},
	{Title: "Journaling", Duration: "15 mins", Benefit: "Processes emotions and thoughts.", Description: "Write down whatever is on your mind without censoring yourself. It's a great way to understand your feelings and release emotional baggage.", Icon: "✍️"},
	{Title: "Nature Walk", Duration: "30 mins", Benefit: "Boosts mood and reduces rumination.", Description: "Spend time walking in a park or a natural setting. Pay attention to the sights, sounds, and smells around you to practice mindfulness.", Icon: "🌳"},
	{Title: "Sleep Hygiene", Duration: "Varies", Benefit: "Essential for mental and physical health.", Description: "Create a relaxing bedtime routine. Avoid screens before bed, keep your room dark and cool, and try to go to sleep and wake up at the same time every day.", Icon: "😴"},
}

var Resources = []Resource{
	{Type: "Book", Title: "The Gifts of Imperfection", Author: "Brené Brown", Rating: 4.8, Link: "#", Image: "https://picsum.photos/seed/book1/200/300"},
	{Type: "Podcast", Title: "The Happiness Lab", Author: "Dr. Laurie Santos", Rating: 4.9, Link: "#", Image: "https://picsum.photos/seed/podcast1/200/300"},
	{Type: "eBook", Title: "Man's Search for Meaning", Author: "Viktor E. Frankl", Rating: 4.7, Link: "#", Image: "https://picsum.photos/seed/ebook1/200/300"},
	{Type: "Book", Title: "Atomic Habits", Author: "James Clear", Rating: 4.9, Link: "#", Image: "https://picsum.photos/seed/book2/200/300"},
	{Type: "Podcast", Title: "On Purpose with Jay Shetty", Author: "Jay Shetty", Rating: 4.8, Link: "#", Image: "https://picsum.photos/seed/podcast2/200/300"},
	{Type: "eBook", Title: "The Power of Now", Author: "Eckhart Tolle", Rating: 4.6, Link: "#", Image: "https://picsum.photos/seed/ebook2/200/300"},
	{Type: "Book", Title: "Maybe You Should Talk to Someone", Author: "Lori Gottlieb", Rating: 4.8, Link: "#", Image: "https://picsum.photos/seed/book3/200/300"},
	{Type: "Podcast", Title: "Unlocking Us", Author: "Brené Brown", Rating: 4.9, Link: "#", Image: "https://picsum.photos/seed/podcast3/200/300"},
	{Type: "eBook", Title: "Daring Greatly", Author: "Brené Brown", Rating: 4.7, Link: "#", Image: "https://picsum.photos/seed/ebook3/200/300"},
	{Type: "Book", Title: "Mindset: The New Psychology of Success", Author: "Carol S. Dweck", Rating: 4.6, Link: "#", Image: "https://picsum.photos/seed/book4/200/300"},
	{Type: "Podcast", Title: "Feel Better, Live More", Author: "Dr Rangan Chatterjee", Rating: 4.7, Link: "#", Image: "https://picsum.photos/seed/podcast4/200/300"},
	{Type: "eBook", Title: "Thinking, Fast and Slow", Author: "Daniel Kahneman", Rating: 4.6, Link: "#", Image: "https://picsum.photos/seed/ebook4/200/300"},
	{Type: "Book", Title: "Attached", Author: "Amir Levine & Rachel S.F. Heller", Rating: 4.7, Link: "#", Image: "https://picsum.photos/seed/book5/200/300"},
	{Type: "Podcast", Title: "The Doctor's Farmacy", Author: "Dr. Mark Hyman", Rating: 4.8, Link: "#", Image: "https://picsum.photos/seed/podcast5/200/300"},
	{Type: "eBook", Title: "Sapiens: A Brief History of Humankind", Author: "Yuval Noah Harari", Rating: 4.8, Link: "#", Image: "https://picsum.photos/seed/ebook5/200/300"},
}
