package sample

// Transcript is a real estate sales call between an agent and a prospective
// tenant. Turns are "Speaker: text" lines separated by a blank line.
const Transcript = `Agent: Good morning! Thanks for calling Luxury Homes Realty. This is Alex speaking. How can I help you today?

Customer: Hi Alex, I'm interested in the two-bedroom apartment you have listed on Oak Street. I'd like to know more about it.

Agent: Absolutely! I'd be happy to tell you all about our Oak Street property. It's one of our most popular listings right now. Before we dive in, may I have your name please?

Customer: Sure, it's Jamie Smith.

Agent: Thank you, Jamie. And are you looking for a place for yourself or will others be living there as well?

Customer: It's for me and my partner. We're looking to move in the next couple of months.

Agent: Perfect, thank you for sharing that. The Oak Street apartment is actually perfect for couples. It features two spacious bedrooms with the master having an en-suite bathroom. The living area is open concept with large windows that let in plenty of natural light.

Customer: That sounds nice. What about the kitchen? We both love to cook.

Agent: You're going to love the kitchen! It was completely renovated last year with quartz countertops, stainless steel appliances, and a gas range. There's also a breakfast bar that's perfect for casual dining or entertaining guests.

Customer: Great. And what about the neighborhood? Is it safe? Are there grocery stores nearby?

Agent: That's a great question. Oak Street is located in one of our safest neighborhoods with very low crime rates. There's a Whole Foods just two blocks away, and a farmer's market every Saturday morning within walking distance. You're also just a 5-minute walk from Central Park, which has great jogging trails.

Customer: What about parking? We have one car.

Agent: The building includes one designated parking spot for each unit, and there's also ample street parking for visitors. Additionally, there's a bus stop right outside and the subway station is just a 10-minute walk away if you prefer public transportation.

Customer: And how much is the rent again?

Agent: The apartment is $2,200 per month with a 12-month lease. This includes water and trash service. Tenants are responsible for electricity and internet. There's also a security deposit equal to one month's rent.

Customer: That's a bit higher than we were hoping to spend. Do you have any flexibility on the price?

Agent: I understand your concern about the budget. While the listed price is competitive for the neighborhood, the owner might consider $2,150 for qualified applicants with excellent credit. Also, if you sign an 18-month lease instead of 12 months, we could potentially offer a small discount. Would either of those options work better for your budget?

Customer: The 18-month lease might work. Can we see the apartment before making a decision?

Agent: Absolutely! I'd be happy to arrange a viewing for you. We have availability tomorrow afternoon at 3 PM or Saturday morning at 10 AM. Which would work better for you and your partner?

Customer: Saturday at 10 would be perfect.

Agent: Excellent! I'll schedule you for Saturday at 10 AM. Could I get your email address to send you a confirmation and some additional information about the property?

Customer: Sure, it's jamie.smith@email.com.

Agent: Thank you, Jamie. I've got you scheduled for Saturday at 10 AM. You'll receive an email confirmation shortly with all the details including the address and my contact information. Is there anything else you'd like to know about the property before our meeting?

Customer: No, I think that covers it for now. Thanks for your help.

Agent: You're very welcome! I'm looking forward to meeting you and your partner on Saturday and showing you this beautiful apartment. I think you'll really love it. If you have any questions before then, please don't hesitate to call me. Have a great day!

Customer: You too. Goodbye.

Agent: Goodbye, Jamie.`
